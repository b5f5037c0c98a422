package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-alert-feed/internal/adapter/feed"
	"github.com/couchcryptid/weather-alert-feed/internal/config"
	"github.com/couchcryptid/weather-alert-feed/internal/display"
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

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := observability.NewLoggerTo(logFile, cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	events := display.NewFeed()
	controller := rotation.NewController(clock, cfg.DisplayInterval, cfg.AnimationSpeed, logger, metrics, events)
	defer controller.Close()

	client := feed.NewClient(cfg.FetchTimeout, cfg.UserAgent)
	coordinator := pipeline.NewCoordinator(client, feed.Parse, cfg.MaxConcurrentFetches, logger, metrics)
	poller := pipeline.New(coordinator, pipeline.NewSettings(cfg.Feed(), cfg.ShowNoAlertsMsg), cfg.UpdateInterval, clock, logger, metrics, events, controller)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.PeriodicSync {
		go poller.RunConfigSync(ctx, cfg.SyncInterval, func() (pipeline.Settings, error) {
			fs, err := cfg.LoadRegions()
			if err != nil {
				return pipeline.Settings{}, err
			}
			return pipeline.NewSettings(fs, cfg.ShowNoAlertsMsg), nil
		})
	}
	go func() {
		if err := poller.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	p := tea.NewProgram(display.NewModel(events, cfg.Lang, poller.Refresh).WithFetchErrors(cfg.ShowFetchErrors), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}
