package deck

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"pptgen/app/internal/llm"
	"pptgen/app/internal/outline"
)

// ServiceOptions wires the run pipeline.
type ServiceOptions struct {
	Generator llm.TextGenerator
	Assembler *Assembler
	Writer    *Writer
	// NewDeck creates the empty document for a run; defaults to NewPresentation.
	NewDeck   func(title string) Deck
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Service runs topic -> outline -> slides -> file.
type Service struct {
	generator llm.TextGenerator
	assembler *Assembler
	writer    *Writer
	newDeck   func(title string) Deck
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

// NewService validates the options and returns a Service.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Generator == nil {
		return nil, eris.New("text generator is required")
	}
	if opts.Assembler == nil {
		return nil, eris.New("slide assembler is required")
	}
	if opts.Writer == nil {
		return nil, eris.New("deck writer is required")
	}

	newDeck := opts.NewDeck
	if newDeck == nil {
		newDeck = NewPresentation
	}

	return &Service{
		generator: opts.Generator,
		assembler: opts.Assembler,
		writer:    opts.Writer,
		newDeck:   newDeck,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
	}, nil
}

// Run generates an outline for topic and builds the deck from it.
func (s *Service) Run(ctx context.Context, topic string) (string, error) {
	text, err := s.Generate(ctx, topic)
	if err != nil {
		return "", err
	}
	return s.BuildFromText(ctx, strings.TrimSpace(topic), text)
}

// Generate asks the text model for an outline of topic.
func (s *Service) Generate(ctx context.Context, topic string) (string, error) {
	trimmed := strings.TrimSpace(topic)
	if trimmed == "" {
		return "", eris.New("topic is required")
	}

	text, err := s.generator.Generate(ctx, outline.Prompt(trimmed))
	if err != nil {
		s.recordError(logrus.Fields{"topic": trimmed}, err, "generating outline")
		return "", eris.Wrap(err, "generating outline")
	}

	return text, nil
}

// BuildFromText parses outline text, assembles every slide in order and saves the deck once.
// Unparseable text and empty outlines return before any deck is created.
func (s *Service) BuildFromText(ctx context.Context, title, text string) (string, error) {
	runID := uuid.NewString()
	fields := logrus.Fields{"run_id": runID}

	if s.sentryHub != nil {
		s.sentryHub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("run_id", runID)
		})
	}

	slides, err := outline.Parse(outline.StripCodeFence(text))
	if err != nil {
		if eris.Is(err, outline.ErrNoSlides) {
			if s.logger != nil {
				s.logger.WithFields(fields).Warn("outline has no slides, nothing to write")
			}
			return "", eris.Wrap(err, "building deck")
		}
		s.recordError(fields, err, "parsing outline")
		return "", eris.Wrap(err, "parsing outline")
	}

	if s.logger != nil {
		s.logger.WithFields(fields).WithField("slides", len(slides)).Info("assembling deck")
	}

	deck := s.newDeck(title)
	for _, spec := range slides {
		if err := s.assembler.Assemble(ctx, deck, spec); err != nil {
			s.recordError(logrus.Fields{"run_id": runID, "slide": spec.Index}, err, "assembling slide")
			return "", eris.Wrapf(err, "assembling slide %d", spec.Index)
		}
	}

	path, err := s.writer.Finalize(deck)
	if err != nil {
		s.recordError(fields, err, "finalising deck")
		return "", err
	}

	return path, nil
}

func (s *Service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
