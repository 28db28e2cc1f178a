package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-tracker/internal/adapter/eonet"
	"github.com/couchcryptid/wildfire-tracker/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/wildfire-tracker/internal/adapter/kafka"
	"github.com/couchcryptid/wildfire-tracker/internal/cache"
	"github.com/couchcryptid/wildfire-tracker/internal/config"
	"github.com/couchcryptid/wildfire-tracker/internal/loader"
	"github.com/couchcryptid/wildfire-tracker/internal/observability"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "wildfire-tracker")
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.EONETTimeout)
	backend, err := cache.OpenBackend(startCtx, cfg)
	cancelStart()
	if err != nil {
		logger.Error("failed to open cache backend", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	store := cache.NewStore(backend, clock, logger, metrics)
	logger.Info("snapshot cache ready", "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL)

	client := eonet.NewClient(cfg.EONETBaseURL, cfg.EONETCategory, cfg.EONETTimeout, logger, metrics)

	opts := []loader.Option{loader.WithClock(clock)}
	var writer *kafkaadapter.Writer
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, clock, logger)
		opts = append(opts, loader.WithPublisher(writer))
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	l := loader.New(client, store, loader.OptionsFromConfig(cfg), logger, metrics, opts...)
	refresher := loader.NewRefresher(l, cfg.RefreshInterval, clock, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, l, cfg.APIRateLimit, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		refresher.Run(ctx)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("refresher did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := backend.Close(); err != nil {
		logger.Error("cache backend close error", "error", err)
	}

	logger.Info("shutdown complete")
}
