package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/skycast/internal/api/http"
	"github.com/i474232898/skycast/internal/config"
	"github.com/i474232898/skycast/internal/logger"
	"github.com/i474232898/skycast/internal/observability"
	"github.com/i474232898/skycast/internal/weather"
	"github.com/i474232898/skycast/internal/weather/providers"
)

func main() {
	envErr := godotenv.Load()
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log, err := logger.New(logger.Config{Level: cfg.Level, Format: cfg.Format})
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to build logger")
	}
	if envErr != nil {
		log.Info().Err(envErr).Msg("no .env file loaded")
	}

	metrics := observability.NewMetrics()

	// Shared HTTP client for outbound provider calls. Zero timeout keeps the transport default.
	httpClient := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	provider := providers.NewOpenWeatherProvider(providers.OpenWeatherConfig{
		APIKey:  cfg.OpenWeatherAPIKey,
		BaseURL: cfg.OpenWeatherBaseURL,
		Client:  httpClient,
		Backoff: providers.BackoffConfig{
			MaxRetries:      cfg.UpstreamMaxRetries,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
		},
		Metrics: metrics,
		Logger:  log,
	})

	service := weather.NewService(provider, metrics, log)

	app := httpapi.NewApp(service, httpapi.Options{
		Logger:    log,
		AccessLog: true,
		Metrics:   true,
	})

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Stringer("upstream", provider).Msg("skycast listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("skycast stopped")
}
