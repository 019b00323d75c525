package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/alert"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/cfg"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/detector"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/metrics"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/ml"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/server"
	"github.com/santhosh-1168513/Credit-Card-Fraud-Detection/internal/storage"
)

func main() {
	_ = godotenv.Load()

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	configureLogging(settings.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	sink := metrics.NewWrapper(m)

	store := initializeStorage(settings)
	if store != nil {
		defer store.Close()
	}

	det := detector.New(store, sink, detector.Options{
		ModelType:    settings.ModelType,
		TestFraction: settings.TestFraction,
		ML: ml.Config{
			Trees:    settings.Trees,
			MaxDepth: settings.MaxDepth,
			Seed:     settings.Seed,
		},
	})
	if err := det.LoadModel(); err != nil {
		log.Warn().Err(err).Msg("persisted model unavailable, starting without model")
	}

	notifier := alert.New(settings.AlertWebhookURL, settings.AlertTimeout)
	if notifier.Enabled() {
		log.Info().Msg("fraud alert webhook enabled")
	}

	srv := server.New(settings, det, notifier)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	waitForShutdown(ctx, cancel, errCh)
}

// initializeStorage opens the model store if DATA_PATH is configured.
func initializeStorage(settings cfg.Settings) *storage.Store {
	if settings.DataPath == "" {
		return nil
	}
	store, err := storage.New(settings.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without persistence")
		return nil
	}
	return store
}

func configureLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// waitForShutdown blocks until a signal arrives or the server fails,
// then cancels the context and gives the server time to drain.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, errCh chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
		return
	case <-ctx.Done():
	}

	cancel()
	select {
	case <-errCh:
		log.Info().Msg("server stopped")
	case <-time.After(15 * time.Second):
		log.Warn().Msg("shutdown timeout, forcing exit")
	}
}
