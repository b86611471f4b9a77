package deck

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"pptgen/app/internal/imagery"
	"pptgen/app/internal/outline"
	"pptgen/app/internal/pptx"
)

// ImageSource produces one illustration per slide prompt.
type ImageSource interface {
	Acquire(ctx context.Context, prompt string) imagery.Result
}

var _ ImageSource = (*imagery.Acquirer)(nil)

// AssemblerOptions configures slide assembly.
type AssemblerOptions struct {
	Images   ImageSource
	Observer Observer
	Logger   *logrus.Logger
	// TempDir receives the transient picture files; empty means os.TempDir().
	TempDir string
}

// Assembler turns slide specs into slides on a deck.
type Assembler struct {
	images   ImageSource
	observer Observer
	logger   *logrus.Logger
	tempDir  string
}

// NewAssembler validates the options and returns an Assembler.
func NewAssembler(opts AssemblerOptions) (*Assembler, error) {
	if opts.Images == nil {
		return nil, eris.New("image source is required")
	}

	observer := opts.Observer
	if observer == nil {
		observer = logObserver{logger: opts.Logger}
	}

	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Assembler{
		images:   opts.Images,
		observer: observer,
		logger:   opts.Logger,
		tempDir:  tempDir,
	}, nil
}

// Assemble appends exactly one slide for spec. Image problems downgrade the slide to text only;
// the only error returned is a deck that cannot produce a slide at all.
func (a *Assembler) Assemble(ctx context.Context, deck Deck, spec outline.SlideSpec) error {
	slide := deck.AddSlide()
	if slide == nil {
		return eris.Errorf("deck could not create slide %d", spec.Index)
	}

	slide.Title.Text.SetText(spec.Title)

	fields := logrus.Fields{"slide": spec.Index, "title": spec.Title}

	var rendered RenderedSlide
	result := a.images.Acquire(ctx, spec.ImagePrompt)
	if result.OK() {
		rendered = Render(spec, result.Image)
	} else {
		a.logError(fields, result.Err, "image unavailable, using text-only layout")
		rendered = Render(spec, nil)
	}

	withImage := false
	if rendered.HasImage() {
		if err := a.embed(slide, rendered); err != nil {
			a.logError(fields, err, "embedding image failed, using text-only layout")
		} else {
			slide.Body.Frame = rendered.Body
			withImage = true
		}
	}

	slide.Body.Text.Clear()
	for _, point := range spec.Points {
		slide.Body.Text.AddParagraph(point, 0)
	}

	a.observer.SlideAdded(spec.Index, spec.Title, withImage)
	return nil
}

// embed writes the raster to a slide-scoped temporary file, places it, and removes the file.
func (a *Assembler) embed(slide *pptx.Slide, rendered RenderedSlide) error {
	file, err := os.CreateTemp(a.tempDir, fmt.Sprintf("pptgen-slide-%03d-*.png", rendered.Spec.Index))
	if err != nil {
		return eris.Wrap(err, "creating temporary image file")
	}
	path := file.Name()
	defer os.Remove(path)

	if err := png.Encode(file, rendered.Image); err != nil {
		_ = file.Close()
		return eris.Wrap(err, "encoding temporary image")
	}
	if err := file.Close(); err != nil {
		return eris.Wrap(err, "closing temporary image")
	}

	frame := rendered.Picture
	if _, err := slide.AddPicture(path, frame.Left, frame.Top, frame.Width); err != nil {
		return eris.Wrap(err, "adding picture to slide")
	}
	return nil
}

func (a *Assembler) logError(fields logrus.Fields, err error, message string) {
	if a.logger == nil || err == nil {
		return
	}
	a.logger.WithField("error", err.Error()).WithFields(fields).Warn(message)
}
