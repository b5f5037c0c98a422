package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-alert-feed/internal/adapter/feed"
	httpadapter "github.com/couchcryptid/weather-alert-feed/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-alert-feed/internal/adapter/kafka"
	"github.com/couchcryptid/weather-alert-feed/internal/config"
	"github.com/couchcryptid/weather-alert-feed/internal/observability"
	"github.com/couchcryptid/weather-alert-feed/internal/pipeline"
	"github.com/couchcryptid/weather-alert-feed/internal/rotation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	var (
		sinks     []pipeline.Sink
		displays  []rotation.Display
		publisher *kafkaadapter.Publisher
	)
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		sinks = append(sinks, publisher)
		displays = append(displays, publisher)
		logger.Info("kafka presentation events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka presentation events disabled")
	}

	controller := rotation.NewController(clock, cfg.DisplayInterval, cfg.AnimationSpeed, logger, metrics, displays...)
	sinks = append(sinks, controller)

	client := feed.NewClient(cfg.FetchTimeout, cfg.UserAgent)
	coordinator := pipeline.NewCoordinator(client, feed.Parse, cfg.MaxConcurrentFetches, logger, metrics)
	poller := pipeline.New(coordinator, pipeline.NewSettings(cfg.Feed(), cfg.ShowNoAlertsMsg), cfg.UpdateInterval, clock, logger, metrics, sinks...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.API{
		Ready:     poller,
		Cycles:    poller,
		Rotation:  controller,
		Refresher: poller,
		Lang:      cfg.Lang,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Re-read the regions source and refresh.
	if cfg.PeriodicSync {
		logger.Info("periodic config sync enabled", "interval", cfg.SyncInterval, "regions_file", cfg.RegionsFile)
		go poller.RunConfigSync(ctx, cfg.SyncInterval, func() (pipeline.Settings, error) {
			fs, err := cfg.LoadRegions()
			if err != nil {
				return pipeline.Settings{}, err
			}
			return pipeline.NewSettings(fs, cfg.ShowNoAlertsMsg), nil
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := poller.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
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
		logger.Warn("poller did not stop before shutdown timeout")
	}
	controller.Close()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
