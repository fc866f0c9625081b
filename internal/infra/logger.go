package infra

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs a zerolog.Logger with sane defaults for the service.
func NewLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "zeus").
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}

// ProviderWarning adapts the logger to the provider OnWarning callbacks.
func ProviderWarning(logger zerolog.Logger, provider string) func(reason, detail string) {
	return func(reason, detail string) {
		logger.Warn().Str("provider", provider).Str("reason", reason).Str("detail", detail).Msg("provider configuration adjusted")
	}
}
