package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/internal/generation"
	"github.com/NeousAxis/globalworkflow/internal/http/handlers"
	"github.com/NeousAxis/globalworkflow/internal/http/httpapi"
	"github.com/NeousAxis/globalworkflow/internal/infra"
	"github.com/NeousAxis/globalworkflow/internal/metrics"
	"github.com/NeousAxis/globalworkflow/internal/providers/image"
	"github.com/NeousAxis/globalworkflow/internal/providers/speech"
	"github.com/NeousAxis/globalworkflow/internal/providers/text"
	"github.com/NeousAxis/globalworkflow/internal/schema"
	"github.com/NeousAxis/globalworkflow/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid storage configuration")
	}
	if err := store.EnsureLayout(); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to prepare storage")
	}

	catalog, err := domain.LoadCopyCatalog()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load copy catalog")
	}
	validator, err := schema.NewValidator()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to compile request schemas")
	}
	recorder := metrics.NewProm("zeus", nil)

	textGen := newTextGenerator(cfg, logger)
	voice := speech.NewElevenLabs(speech.Options{
		APIKey:  cfg.ElevenLabsAPIKey,
		BaseURL: cfg.ElevenLabsBaseURL,
		VoiceID: cfg.ElevenLabsVoiceID,
		Model:   cfg.ElevenLabsModel,
		Timeout: cfg.ProviderTimeout,
	})
	images := image.NewOpenAIImages(image.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIImageModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		Timeout:      cfg.ProviderTimeout,
	})

	svc, err := generation.NewService(generation.Options{
		Text:    textGen,
		Speech:  voice,
		Images:  images,
		Store:   store,
		Copy:    catalog,
		Metrics: recorder,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation service")
	}

	apis := handlers.APIStatus{
		OpenAI:     cfg.OpenAIAPIKey != "",
		ElevenLabs: voice.Configured(),
		Gemini:     cfg.GeminiAPIKey != "",
	}
	app := handlers.NewApp(svc, store, validator, apis, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		Metrics:            recorder,
		MetricsHandler:     recorder.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
		DefaultLocale:      cfg.DefaultLocale,
		Locales:            catalog.Tags(),
	})

	server := infra.NewHTTPServer(cfg, router)
	ln, err := net.Listen("tcp", server.Addr())
	if err != nil {
		logger.Fatal().Err(err).Str("addr", server.Addr()).Msg("failed to listen")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("addr", server.Addr()).
		Str("storage", store.BasePath()).
		Str("base_url", store.BaseURL()).
		Str("text_provider", textGen.Name()).
		Interface("apis", apis).
		Msg("API listening")
	if err := server.Run(ctx, ln); err != nil {
		logger.Error().Err(err).Msg("http server failed")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

func newTextGenerator(cfg *infra.Config, logger zerolog.Logger) text.Generator {
	if cfg.TextProvider == infra.TextProviderGemini {
		return text.NewGeminiGenerator(text.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.ProviderTimeout,
		})
	}
	return text.NewOpenAIGenerator(text.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		Timeout:      cfg.ProviderTimeout,
		OnWarning:    infra.ProviderWarning(logger, infra.TextProviderOpenAI),
	})
}
