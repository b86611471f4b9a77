package outline

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultImagePrompt is used when a slide record has no image_prompt.
const DefaultImagePrompt = "a missing icon"

var (
	// ErrParse indicates outline text that is malformed, empty, or structurally invalid.
	ErrParse = eris.New("outline parse failure")
	// ErrNoSlides indicates outline text that parsed successfully but holds no slides.
	ErrNoSlides = eris.New("outline contains no slides")
)

// SlideSpec is one slide's intended title, bullet points, and image description.
type SlideSpec struct {
	// Index is 1-based and follows source order.
	Index       int
	Key         string
	Title       string
	Points      []string
	ImagePrompt string
}

// Outline is the ordered slide sequence of one run.
type Outline []SlideSpec

// slideRecord is the typed form of one record's value; pointer fields distinguish absent from empty.
type slideRecord struct {
	Title       *scalarText `yaml:"title"`
	Points      pointList   `yaml:"points"`
	ImagePrompt *scalarText `yaml:"image_prompt"`
}

// Parse converts outline text into slides. The top level must be a sequence of single-key
// mappings whose values supply title, points, and image_prompt.
func Parse(text string) (Outline, error) {
	if strings.TrimSpace(text) == "" {
		return nil, eris.Wrap(ErrParse, "outline text is empty")
	}

	var doc yaml.Node
	decoder := yaml.NewDecoder(bytes.NewReader([]byte(text)))
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, eris.Wrap(ErrParse, "outline document is empty")
		}
		return nil, eris.Wrapf(ErrParse, "decoding outline yaml: %v", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, eris.Wrap(ErrParse, "outline document is empty")
	}

	root := doc.Content[0]
	if isNull(root) {
		return nil, eris.Wrap(ErrParse, "outline document is empty")
	}

	if root.Kind != yaml.SequenceNode {
		return nil, eris.Wrapf(ErrParse, "outline must be a sequence of slides, line %d", root.Line)
	}

	if len(root.Content) == 0 {
		return nil, ErrNoSlides
	}

	slides := make(Outline, 0, len(root.Content))
	for position, item := range root.Content {
		spec, err := parseSlide(resolveAlias(item), position+1)
		if err != nil {
			return nil, err
		}
		slides = append(slides, spec)
	}

	return slides, nil
}

func parseSlide(item *yaml.Node, index int) (SlideSpec, error) {
	if item.Kind != yaml.MappingNode || len(item.Content) < 2 {
		return SlideSpec{}, eris.Wrapf(ErrParse, "slide %d must be a single-key mapping, line %d", index, item.Line)
	}

	// The first key names the slide; further keys are ignored.
	key := item.Content[0].Value
	value := resolveAlias(item.Content[1])

	spec := SlideSpec{
		Index:       index,
		Key:         key,
		Points:      []string{},
		ImagePrompt: DefaultImagePrompt,
	}

	if isNull(value) {
		return spec, nil
	}

	if value.Kind != yaml.MappingNode {
		return SlideSpec{}, eris.Wrapf(ErrParse, "slide %d (%s) must map to title, points and image_prompt, line %d", index, key, value.Line)
	}

	var record slideRecord
	if err := value.Decode(&record); err != nil {
		return SlideSpec{}, eris.Wrapf(ErrParse, "decoding slide %d (%s): %v", index, key, err)
	}

	if record.Title != nil {
		spec.Title = string(*record.Title)
	}

	spec.Points = append(spec.Points, record.Points...)

	if record.ImagePrompt != nil && strings.TrimSpace(string(*record.ImagePrompt)) != "" {
		spec.ImagePrompt = string(*record.ImagePrompt)
	}

	return spec, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

// scalarText accepts any scalar and keeps its source text; null decodes to empty.
type scalarText string

func (s *scalarText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return eris.Errorf("expected a scalar at line %d", node.Line)
	}
	if node.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = scalarText(node.Value)
	return nil
}

// pointText accepts a scalar bullet, or a single-pair mapping produced when a bullet
// contains an unquoted colon, which is rejoined as "key: value".
type pointText string

func (p *pointText) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var text scalarText
		if err := text.UnmarshalYAML(node); err != nil {
			return err
		}
		*p = pointText(text)
		return nil
	case yaml.MappingNode:
		if len(node.Content) == 2 && node.Content[0].Kind == yaml.ScalarNode && node.Content[1].Kind == yaml.ScalarNode {
			*p = pointText(node.Content[0].Value + ": " + node.Content[1].Value)
			return nil
		}
	}
	return eris.Errorf("expected a text bullet at line %d", node.Line)
}

// pointList holds the bullets of a slide. Every sequence entry yields one bullet, null entries
// included; a lone scalar is a single bullet.
type pointList []string

func (l *pointList) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = pointList{node.Value}
		return nil
	case yaml.SequenceNode:
		points := make(pointList, 0, len(node.Content))
		for _, item := range node.Content {
			var point pointText
			if err := point.UnmarshalYAML(resolveAlias(item)); err != nil {
				return err
			}
			points = append(points, string(point))
		}
		*l = points
		return nil
	}
	return eris.Errorf("expected a list of bullets at line %d", node.Line)
}
