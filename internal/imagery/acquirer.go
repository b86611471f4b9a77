package imagery

import (
	"context"
	"image"

	"github.com/rotisserie/eris"

	"pptgen/app/internal/llm"
)

// Result is the outcome of acquiring one slide's image.
type Result struct {
	Image image.Image
	Err   error
}

// OK reports whether the result carries a usable image.
func (r Result) OK() bool {
	return r.Err == nil && r.Image != nil
}

// Acquirer requests an image for a description, then fetches and decodes it.
// Failures are returned as values; nothing is cached or retried.
type Acquirer struct {
	generator llm.ImageGenerator
	loader    Loader
}

// NewAcquirer wires an Acquirer from its two collaborators.
func NewAcquirer(generator llm.ImageGenerator, loader Loader) (*Acquirer, error) {
	if generator == nil {
		return nil, eris.New("image generator is required")
	}
	if loader == nil {
		return nil, eris.New("image loader is required")
	}

	return &Acquirer{generator: generator, loader: loader}, nil
}

// Acquire never returns an error directly; the reason travels in Result.Err.
func (a *Acquirer) Acquire(ctx context.Context, prompt string) Result {
	locator, err := a.generator.GenerateImage(ctx, prompt)
	if err != nil {
		return Result{Err: eris.Wrap(err, "requesting image")}
	}

	img, err := a.loader.Load(ctx, locator)
	if err != nil {
		return Result{Err: eris.Wrapf(err, "loading image from %s", truncate(locator, 80))}
	}

	if img == nil {
		return Result{Err: eris.Wrap(ErrFetchDecode, "loader returned no image")}
	}

	return Result{Image: img}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
