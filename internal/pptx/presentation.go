package pptx

import (
	"bytes"
	"image"
	_ "image/gif"  // register decoders
	_ "image/jpeg" // register decoders
	_ "image/png"  // register decoders
	"math"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// EMU is the English Metric Unit used for all drawing geometry.
type EMU int64

// EMUPerInch is the number of EMUs in one inch.
const EMUPerInch EMU = 914400

// Inches converts inches to EMU.
func Inches(v float64) EMU {
	return EMU(math.Round(v * float64(EMUPerInch)))
}

// Default 4:3 slide size.
const (
	SlideWidth  EMU = 9144000
	SlideHeight EMU = 6858000
)

// MaxLevel is the deepest paragraph outline level.
const MaxLevel = 8

// Rect is a shape frame in slide coordinates.
type Rect struct {
	Left   EMU
	Top    EMU
	Width  EMU
	Height EMU
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() EMU { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() EMU { return r.Top + r.Height }

// Overlaps reports whether two frames share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right() && o.Left < r.Right() && r.Top < o.Bottom() && o.Top < r.Bottom()
}

// Frames of the title-and-content layout placeholders.
var (
	TitleFrame = Rect{Left: Inches(0.5), Top: Inches(0.3), Width: Inches(9), Height: Inches(1.25)}
	BodyFrame  = Rect{Left: Inches(0.5), Top: Inches(1.75), Width: Inches(9), Height: Inches(4.95)}
)

// Presentation is an in-memory deck of title-and-content slides.
type Presentation struct {
	Title   string
	Author  string
	Created time.Time

	slides []*Slide
}

// New creates an empty presentation.
func New() *Presentation {
	return &Presentation{
		Author:  "pptgen",
		Created: time.Now().UTC(),
	}
}

// AddSlide appends a slide with an empty title placeholder and an empty body placeholder.
func (p *Presentation) AddSlide() *Slide {
	slide := &Slide{
		number: len(p.slides) + 1,
		Title:  &Placeholder{Frame: TitleFrame, Text: newTextFrame()},
		Body:   &Placeholder{Frame: BodyFrame, Text: newTextFrame()},
	}
	p.slides = append(p.slides, slide)
	return slide
}

// Slides returns the slides in deck order.
func (p *Presentation) Slides() []*Slide {
	out := make([]*Slide, len(p.slides))
	copy(out, p.slides)
	return out
}

// Slide is one title-and-content slide.
type Slide struct {
	number   int
	Title    *Placeholder
	Body     *Placeholder
	pictures []*Picture
}

// Number is the 1-based position of the slide in its deck.
func (s *Slide) Number() int { return s.number }

// Pictures returns the pictures placed on the slide.
func (s *Slide) Pictures() []*Picture {
	out := make([]*Picture, len(s.pictures))
	copy(out, s.pictures)
	return out
}

// AddPicture embeds the image file at path. The picture is placed at left/top with the given
// width; its height follows the image's aspect ratio. The file may be removed once this returns.
func (s *Slide) AddPicture(path string, left, top, width EMU) (*Picture, error) {
	if width <= 0 {
		return nil, eris.Errorf("picture width must be positive, got %d", width)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reading picture %s", path)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "reading picture header %s", path)
	}

	ext, ok := mediaExtensions[format]
	if !ok {
		return nil, eris.Errorf("unsupported picture format %q", format)
	}

	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, eris.Errorf("picture %s has no pixels", path)
	}

	height := EMU(math.Round(float64(width) * float64(cfg.Height) / float64(cfg.Width)))

	picture := &Picture{
		Frame: Rect{Left: left, Top: top, Width: width, Height: height},
		data:  data,
		ext:   ext,
	}
	s.pictures = append(s.pictures, picture)
	return picture, nil
}

var mediaExtensions = map[string]string{
	"png":  "png",
	"jpeg": "jpeg",
	"gif":  "gif",
}

// Placeholder is a layout-inherited text region with an explicit frame.
type Placeholder struct {
	Frame Rect
	Text  *TextFrame
}

// Picture is an embedded raster image.
type Picture struct {
	Frame Rect
	data  []byte
	ext   string
}

// Paragraph is one line of text at an outline level.
type Paragraph struct {
	Text  string
	Level int
}

// TextFrame holds the paragraphs of a placeholder.
type TextFrame struct {
	paragraphs []Paragraph
}

func newTextFrame() *TextFrame {
	return &TextFrame{}
}

// SetText replaces the content with a single level-0 paragraph.
func (t *TextFrame) SetText(text string) {
	t.paragraphs = []Paragraph{{Text: text}}
}

// Text joins all paragraphs with newlines.
func (t *TextFrame) Text() string {
	lines := make([]string, len(t.paragraphs))
	for i, p := range t.paragraphs {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}

// Clear removes every paragraph.
func (t *TextFrame) Clear() {
	t.paragraphs = nil
}

// AddParagraph appends a paragraph; the level is clamped to [0, MaxLevel].
func (t *TextFrame) AddParagraph(text string, level int) {
	if level < 0 {
		level = 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	t.paragraphs = append(t.paragraphs, Paragraph{Text: text, Level: level})
}

// Paragraphs returns a copy of the paragraphs.
func (t *TextFrame) Paragraphs() []Paragraph {
	out := make([]Paragraph, len(t.paragraphs))
	copy(out, t.paragraphs)
	return out
}
