package deck

import (
	"context"
	"image"
	"image/color"

	"github.com/rotisserie/eris"

	"pptgen/app/internal/imagery"
	"pptgen/app/internal/pptx"
)

type stubImages struct {
	failures map[string]bool
	prompts  []string
}

func (s *stubImages) Acquire(ctx context.Context, prompt string) imagery.Result {
	s.prompts = append(s.prompts, prompt)
	if s.failures[prompt] {
		return imagery.Result{Err: eris.Wrap(imagery.ErrFetchDecode, "stub failure")}
	}
	return imagery.Result{Image: testImage(40, 30)}
}

func testImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	return img
}

type countingDeck struct {
	*pptx.Presentation
	addCalls     int
	saveCalls    int
	slidesAtSave int
	savedPath    string
	saveErr      error
	refuseSlides bool
}

func newCountingDeck() *countingDeck {
	return &countingDeck{Presentation: pptx.New()}
}

func (d *countingDeck) AddSlide() *pptx.Slide {
	d.addCalls++
	if d.refuseSlides {
		return nil
	}
	return d.Presentation.AddSlide()
}

func (d *countingDeck) Save(path string) error {
	d.saveCalls++
	d.slidesAtSave = len(d.Presentation.Slides())
	d.savedPath = path
	return d.saveErr
}

type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type recordedSlide struct {
	index     int
	title     string
	withImage bool
}

type recordingObserver struct {
	slides []recordedSlide
}

func (r *recordingObserver) SlideAdded(index int, title string, withImage bool) {
	r.slides = append(r.slides, recordedSlide{index: index, title: title, withImage: withImage})
}
