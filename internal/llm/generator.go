package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// TextGenerator returns a single completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorOptions configures the chat-completion backed generator.
type GeneratorOptions struct {
	Client      *Client
	Model       string
	MaxTokens   int
	Temperature float64
}

type chatGenerator struct {
	client      *Client
	logger      *logrus.Logger
	model       string
	maxTokens   int64
	temperature float64
}

const (
	defaultGeneratorMaxTokens   = 1500
	defaultGeneratorTemperature = 0.7
)

var _ TextGenerator = (*chatGenerator)(nil)

// NewGenerator constructs a TextGenerator backed by chat completions.
func NewGenerator(opts GeneratorOptions) (TextGenerator, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("generator model is required")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultGeneratorMaxTokens
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultGeneratorTemperature
	}

	return &chatGenerator{
		client:      opts.Client,
		logger:      opts.Client.logger,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
	}, nil
}

func (g *chatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	trimmedPrompt := strings.TrimSpace(prompt)
	if trimmedPrompt == "" {
		return "", eris.Wrap(ErrGeneration, "prompt is required")
	}

	fields := logrus.Fields{"model": g.model}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(trimmedPrompt),
		},
		MaxTokens:   openai.Int(g.maxTokens),
		Temperature: openai.Float(g.temperature),
	}

	completion, err := g.client.chat.New(ctx, params)
	if err != nil {
		logError(g.logger, fields, err, "requesting chat completion")
		return "", eris.Wrapf(ErrGeneration, "requesting chat completion: %v", err)
	}

	if len(completion.Choices) == 0 {
		err := eris.Wrap(ErrGeneration, "llm completion returned no choices")
		logError(g.logger, fields, err, "processing chat completion")
		return "", err
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		err := eris.Wrap(ErrGeneration, "llm blocked the request via content filter")
		logError(g.logger, fields, err, "generator blocked")
		return "", err
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		err := eris.Wrapf(ErrGeneration, "llm refused to generate content: %s", refusal)
		logError(g.logger, fields, err, "generator refused")
		return "", err
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		err := eris.Wrap(ErrGeneration, "llm response content is empty")
		logError(g.logger, fields, err, "empty llm response")
		return "", err
	}

	return content, nil
}
