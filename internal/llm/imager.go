package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// ImageGenerator requests one image for a prompt and returns a locator for it.
// The locator is an http(s) URL or a base64 data URI.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ImagerOptions configures the image generation backed generator.
type ImagerOptions struct {
	Client *Client
	Model  string
	Size   string
}

type imager struct {
	client *Client
	logger *logrus.Logger
	model  string
	size   string
}

const defaultImageSize = "1024x1024"

var _ ImageGenerator = (*imager)(nil)

// NewImager constructs an ImageGenerator backed by the images endpoint.
func NewImager(opts ImagerOptions) (ImageGenerator, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("image model is required")
	}

	size := strings.TrimSpace(opts.Size)
	if size == "" {
		size = defaultImageSize
	}

	return &imager{
		client: opts.Client,
		logger: opts.Client.logger,
		model:  model,
		size:   size,
	}, nil
}

func (g *imager) GenerateImage(ctx context.Context, prompt string) (string, error) {
	trimmedPrompt := strings.TrimSpace(prompt)
	if trimmedPrompt == "" {
		return "", eris.Wrap(ErrGeneration, "image prompt is required")
	}

	fields := logrus.Fields{"model": g.model, "prompt": trimmedPrompt}

	params := openai.ImageGenerateParams{
		Prompt: trimmedPrompt,
		Model:  openai.ImageModel(g.model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize(g.size),
	}

	response, err := g.client.images.Generate(ctx, params)
	if err != nil {
		logError(g.logger, fields, err, "requesting image generation")
		return "", eris.Wrapf(ErrGeneration, "requesting image generation: %v", err)
	}

	if response == nil || len(response.Data) == 0 {
		err := eris.Wrap(ErrGeneration, "image generation returned no data")
		logError(g.logger, fields, err, "processing image generation")
		return "", err
	}

	image := response.Data[0]
	if url := strings.TrimSpace(image.URL); url != "" {
		return url, nil
	}

	if payload := strings.TrimSpace(image.B64JSON); payload != "" {
		return "data:image/png;base64," + payload, nil
	}

	err = eris.Wrap(ErrGeneration, "image generation returned neither url nor payload")
	logError(g.logger, fields, err, "processing image generation")
	return "", err
}
