package outline

import (
	"strings"
	"testing"

	"github.com/rotisserie/eris"
)

const twoSlides = `
- slide1:
    points:
      - "First point"
      - "Second point"
    image_prompt: "A test image"
    title: "Introduction"
- slide2:
    image_prompt: "Another test image"
    title: "Content"
    points:
      - "Another point"
`

func TestParsePreservesSourceOrder(t *testing.T) {
	t.Parallel()

	slides, err := Parse(twoSlides)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(slides))
	}

	first, second := slides[0], slides[1]
	if first.Index != 1 || first.Key != "slide1" || first.Title != "Introduction" {
		t.Fatalf("unexpected first slide: %+v", first)
	}

	if second.Index != 2 || second.Key != "slide2" || second.Title != "Content" {
		t.Fatalf("unexpected second slide: %+v", second)
	}

	if strings.Join(first.Points, "|") != "First point|Second point" {
		t.Fatalf("unexpected points %v", first.Points)
	}

	if first.ImagePrompt != "A test image" || second.ImagePrompt != "Another test image" {
		t.Fatalf("unexpected image prompts %q, %q", first.ImagePrompt, second.ImagePrompt)
	}
}

func TestParseOrderFollowsSequenceNotKeys(t *testing.T) {
	t.Parallel()

	slides, err := Parse("- slide9:\n    title: Nine\n- slide1:\n    title: One\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if slides[0].Title != "Nine" || slides[1].Title != "One" {
		t.Fatalf("expected sequence order to win, got %q then %q", slides[0].Title, slides[1].Title)
	}
}

func TestParseAppliesDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	slides, err := Parse("- slide1:\n    points:\n      - \"Just points\"\n- slide2:\n    title: Only title\n- slide3:\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}

	if slides[0].Title != "" {
		t.Fatalf("expected empty title, got %q", slides[0].Title)
	}

	if slides[0].ImagePrompt != DefaultImagePrompt {
		t.Fatalf("expected default image prompt, got %q", slides[0].ImagePrompt)
	}

	if slides[1].Points == nil || len(slides[1].Points) != 0 {
		t.Fatalf("expected empty non-nil points, got %#v", slides[1].Points)
	}

	if slides[2].Title != "" || len(slides[2].Points) != 0 || slides[2].ImagePrompt != DefaultImagePrompt {
		t.Fatalf("expected fully defaulted slide, got %+v", slides[2])
	}
}

func TestParseKeepsScalarTextVerbatim(t *testing.T) {
	t.Parallel()

	slides, err := Parse("- slide1:\n    title: 2024\n    points:\n      - 42\n      - Note: keep colon\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if slides[0].Title != "2024" {
		t.Fatalf("expected numeric title text, got %q", slides[0].Title)
	}

	if strings.Join(slides[0].Points, "|") != "42|Note: keep colon" {
		t.Fatalf("unexpected points %v", slides[0].Points)
	}
}

func TestParseRejectsEmptyText(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   \n\t", "# only a comment\n", "~"} {
		if _, err := Parse(text); !eris.Is(err, ErrParse) {
			t.Fatalf("expected ErrParse for %q, got %v", text, err)
		}
	}
}

func TestParseRejectsSyntaxErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse("- slide1:\n    title: [unclosed\n    points:\n      - \"x\"\n")
	if !eris.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseRejectsInvalidStructure(t *testing.T) {
	t.Parallel()

	cases := []string{
		"title: not a list",
		"- just a string",
		"- slide1: plain text",
		"- slide1:\n    title:\n      nested: mapping\n",
		"- slide1:\n    points:\n      nested: mapping\n",
		"- slide1:\n    points:\n      - [nested, list]\n",
	}

	for _, text := range cases {
		if _, err := Parse(text); !eris.Is(err, ErrParse) {
			t.Fatalf("expected ErrParse for %q, got %v", text, err)
		}
	}
}

func TestParseKeepsNullBulletsAsEmptyParagraphs(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"- slide1:\n    points:\n      - \n      - b\n",
		"- slide1:\n    points: [ ~, b]\n",
	} {
		slides, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse returned error for %q: %v", text, err)
		}
		points := slides[0].Points
		if len(points) != 2 || points[0] != "" || points[1] != "b" {
			t.Fatalf("expected [\"\" \"b\"] for %q, got %q", text, points)
		}
	}
}

func TestParseScalarPointsIsOneBullet(t *testing.T) {
	t.Parallel()

	slides, err := Parse("- slide1:\n    title: Solo\n    points: just one\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(slides[0].Points) != 1 || slides[0].Points[0] != "just one" {
		t.Fatalf("expected a single bullet, got %q", slides[0].Points)
	}
}

func TestParseResolvesAliases(t *testing.T) {
	t.Parallel()

	text := `
- slide1: &shared
    title: "Repeat"
    points: &bullets ["x", "y"]
- slide2: *shared
- slide3:
    title: "Other"
    points: *bullets
`
	slides, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}
	if slides[1].Index != 2 || slides[1].Key != "slide2" || slides[1].Title != "Repeat" {
		t.Fatalf("unexpected aliased slide %+v", slides[1])
	}
	if strings.Join(slides[2].Points, "|") != "x|y" {
		t.Fatalf("unexpected aliased points %q", slides[2].Points)
	}
}

func TestParseEmptySequenceIsNoSlides(t *testing.T) {
	t.Parallel()

	_, err := Parse("[]")
	if !eris.Is(err, ErrNoSlides) {
		t.Fatalf("expected ErrNoSlides, got %v", err)
	}

	if eris.Is(err, ErrParse) {
		t.Fatalf("expected no-slides outcome to be distinct from parse failure")
	}
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Here you go:\n```yaml\n- slide1:\n    title: A\n```\nEnjoy!": "- slide1:\n    title: A",
		"```\n- slide1:\n    title: B\n```":                          "- slide1:\n    title: B",
		"```YAML\n- slide1:\n    title: C\n```":                      "- slide1:\n    title: C",
		"  - slide1:\n    title: D  ":                                "- slide1:\n    title: D",
		"```yaml\n- slide1:\n    title: E":                           "- slide1:\n    title: E",
	}

	for input, expected := range cases {
		if got := StripCodeFence(input); got != expected {
			t.Fatalf("StripCodeFence(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestPromptIncludesTopicAndFormat(t *testing.T) {
	t.Parallel()

	prompt := Prompt("  the history of tea ")
	if !strings.HasPrefix(prompt, "the history of tea\n") {
		t.Fatalf("expected prompt to start with the topic, got %q", prompt[:40])
	}

	if !strings.Contains(prompt, "image_prompt") {
		t.Fatalf("expected prompt to describe the image_prompt field")
	}
}
