package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-alert-feed/internal/config"
	"github.com/couchcryptid/weather-alert-feed/internal/domain"
	"github.com/couchcryptid/weather-alert-feed/internal/observability"
)

// Settings selects what a poll cycle fetches. It is replaced wholesale by
// UpdateSettings.
type Settings struct {
	APIHost          string
	Lang             string
	Regions          []domain.RegionSpec
	KeepPlaceholders bool
}

// NewSettings builds poll settings from a configured feed selection.
func NewSettings(fs config.FeedSettings, keepPlaceholders bool) Settings {
	return Settings{
		APIHost:          fs.APIHost,
		Lang:             fs.Lang,
		Regions:          fs.Regions,
		KeepPlaceholders: keepPlaceholders,
	}
}

// Sink receives every accepted poll cycle, in acceptance order.
type Sink interface {
	PublishCycle(ctx context.Context, cycle domain.Cycle) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, cycle domain.Cycle) error

func (f SinkFunc) PublishCycle(ctx context.Context, cycle domain.Cycle) error { return f(ctx, cycle) }

// Poller runs poll cycles on a schedule and on demand, and hands accepted
// results to its sinks. Cycles may overlap; a cycle that finishes after a newer
// one has been accepted is discarded.
type Poller struct {
	coordinator *Coordinator
	sinks       []Sink
	clock       clockwork.Clock
	interval    time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics

	settings atomic.Pointer[Settings]
	refresh  chan struct{}
	seq      atomic.Uint64
	ready    atomic.Bool
	inflight sync.WaitGroup

	mu       sync.Mutex
	accepted uint64
	last     domain.Cycle
}

// New creates a Poller that polls every interval.
func New(coordinator *Coordinator, settings Settings, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *Poller {
	p := &Poller{
		coordinator: coordinator,
		sinks:       sinks,
		clock:       clock,
		interval:    interval,
		logger:      logger,
		metrics:     metrics,
		refresh:     make(chan struct{}, 1),
	}
	p.UpdateSettings(settings)
	return p
}

// UpdateSettings replaces the feed selection used by subsequent cycles.
// Cycles already in flight keep the settings they started with.
func (p *Poller) UpdateSettings(s Settings) {
	s.Regions = slices.Clone(s.Regions)
	p.settings.Store(&s)
	p.logger.Info("feed settings updated", "api_host", s.APIHost, "lang", s.Lang, "regions", len(s.Regions))
}

// Settings returns the current feed selection.
func (p *Poller) Settings() Settings {
	s := *p.settings.Load()
	s.Regions = slices.Clone(s.Regions)
	return s
}

// Refresh asks Run to start a cycle now. Requests made while one is already
// pending are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// CheckReadiness returns nil once a poll cycle has been accepted.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no poll cycle has completed yet")
	}
	return nil
}

// LastCycle returns the most recently accepted cycle.
func (p *Poller) LastCycle() (domain.Cycle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.accepted > 0
}

// Run polls immediately, then on every interval tick and every Refresh, until
// the context is cancelled. It waits for in-flight cycles before returning.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.startCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			p.inflight.Wait()
			return nil
		case <-ticker.Chan():
			p.startCycle(ctx)
		case <-p.refresh:
			p.startCycle(ctx)
		}
	}
}

// RunConfigSync reloads the feed selection every interval, applies it, and
// requests a refresh. Load failures keep the previous settings.
func (p *Poller) RunConfigSync(ctx context.Context, interval time.Duration, load func() (Settings, error)) {
	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s, err := load()
			if err != nil {
				p.logger.Warn("config sync failed, keeping previous settings", "error", err)
				continue
			}
			p.logger.Info("syncing feed settings")
			p.UpdateSettings(s)
			p.Refresh()
		}
	}
}

func (p *Poller) startCycle(ctx context.Context) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.RunCycle(ctx)
	}()
}

// RunCycle performs one fetch-parse-classify-rank pass and publishes the result
// unless a newer cycle was accepted first. It reports whether the cycle was
// accepted.
func (p *Poller) RunCycle(ctx context.Context) (domain.Cycle, bool) {
	seq := p.seq.Add(1)
	s := p.settings.Load()
	start := p.clock.Now()

	locators := domain.BuildLocators(s.Regions, s.Lang)
	if len(locators) == 0 || s.APIHost == "" {
		p.logger.Info("no regions or api host configured, publishing empty cycle",
			"regions", len(locators), "api_host", s.APIHost)
	}

	res := p.coordinator.Collect(ctx, s.APIHost, locators)
	alerts, filtered := domain.ClassifyAll(res.Records, s.KeepPlaceholders)

	cycle := domain.Cycle{
		ID:          uuid.NewString(),
		Seq:         seq,
		StartedAt:   start,
		CompletedAt: p.clock.Now(),
		Regions:     len(locators),
		Succeeded:   res.Succeeded,
		Failed:      len(res.Failures),
		Filtered:    filtered,
		Alerts:      domain.Rank(alerts),
	}
	p.metrics.AlertsFiltered.Add(float64(filtered))
	p.metrics.CycleDuration.Observe(p.clock.Since(start).Seconds())

	return cycle, p.accept(ctx, cycle)
}

func (p *Poller) accept(ctx context.Context, cycle domain.Cycle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx.Err() != nil {
		p.logger.Info("poll cycle abandoned", "cycle_id", cycle.ID, "reason", ctx.Err())
		return false
	}
	if cycle.Seq <= p.accepted {
		p.metrics.CyclesDiscarded.Inc()
		p.logger.Info("stale poll cycle discarded", "cycle_id", cycle.ID, "seq", cycle.Seq, "accepted_seq", p.accepted)
		return false
	}

	p.accepted = cycle.Seq
	p.last = cycle
	p.ready.Store(true)
	p.metrics.CyclesCompleted.Inc()
	p.recordSeverities(cycle.Alerts)

	p.logger.Info("poll cycle complete",
		"cycle_id", cycle.ID,
		"regions", cycle.Regions,
		"succeeded", cycle.Succeeded,
		"failed", cycle.Failed,
		"filtered", cycle.Filtered,
		"alerts", len(cycle.Alerts),
	)

	for _, sink := range p.sinks {
		if err := sink.PublishCycle(ctx, cycle); err != nil {
			p.logger.Warn("publish cycle failed", "cycle_id", cycle.ID, "error", err)
		}
	}
	return true
}

func (p *Poller) recordSeverities(alerts []domain.Alert) {
	counts := map[domain.Severity]int{}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	for _, s := range []domain.Severity{domain.SeverityNone, domain.SeverityYellow, domain.SeverityOrange, domain.SeverityRed} {
		p.metrics.AlertsRanked.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}
