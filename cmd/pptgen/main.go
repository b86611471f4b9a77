package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"

	"pptgen/app/internal/config"
	"pptgen/app/internal/deck"
	"pptgen/app/internal/imagery"
	"pptgen/app/internal/llm"
	applog "pptgen/app/internal/log"
	"pptgen/app/internal/outline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(describe(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	client, err := llm.NewClient(llm.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMEndpoint,
		Logger:  logger,
	})
	if err != nil {
		return eris.Wrap(err, "creating llm client")
	}

	generator, err := llm.NewGenerator(llm.GeneratorOptions{
		Client:    client,
		Model:     cfg.TextModel(),
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return eris.Wrap(err, "initialising generator")
	}

	imager, err := llm.NewImager(llm.ImagerOptions{
		Client: client,
		Model:  cfg.ImageModel,
		Size:   cfg.ImageSize,
	})
	if err != nil {
		return eris.Wrap(err, "initialising imager")
	}

	acquirer, err := imagery.NewAcquirer(imager, imagery.NewFetcher(imagery.FetcherOptions{Logger: logger}))
	if err != nil {
		return eris.Wrap(err, "initialising image acquirer")
	}

	assembler, err := deck.NewAssembler(deck.AssemblerOptions{
		Images:   acquirer,
		Observer: deck.ObserverFunc(printSlideAdded),
		Logger:   logger,
	})
	if err != nil {
		return eris.Wrap(err, "initialising slide assembler")
	}

	service, err := deck.NewService(deck.ServiceOptions{
		Generator: generator,
		Assembler: assembler,
		Writer:    deck.NewWriter(cfg.OutputPath, logger),
		Logger:    logger,
		SentryHub: sentryHub,
	})
	if err != nil {
		return eris.Wrap(err, "creating deck service")
	}

	topic, err := promptTopic()
	if err != nil {
		return eris.Wrap(err, "reading topic")
	}

	var text string
	if err := runWithSpinner("Generating outline", func() error {
		var genErr error
		text, genErr = service.Generate(ctx, topic)
		return genErr
	}); err != nil {
		return err
	}

	path, err := service.BuildFromText(ctx, topic, text)
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render("Presentation saved as " + path))
	return nil
}

func describe(err error) string {
	switch {
	case eris.Is(err, config.ErrConfiguration):
		return fmt.Sprintf("configuration error: %v", err)
	case eris.Is(err, outline.ErrNoSlides):
		return "the generated outline contains no slides; nothing was written"
	case eris.Is(err, outline.ErrParse):
		return fmt.Sprintf("could not parse the generated outline: %v", err)
	case eris.Is(err, llm.ErrGeneration):
		return fmt.Sprintf("outline generation failed: %v", err)
	case eris.Is(err, deck.ErrPersistence):
		return fmt.Sprintf("could not save the presentation: %v", err)
	default:
		return fmt.Sprintf("fatal: %v", err)
	}
}
