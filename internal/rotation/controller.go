// Package rotation cycles the presentation through a ranked alert list, one
// alert at a time.
package rotation

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-alert-feed/internal/domain"
	"github.com/couchcryptid/weather-alert-feed/internal/observability"
)

// Display renders rotation output. Calls are serialized by the Controller and
// must not call back into it.
type Display interface {
	Show(frame domain.Frame)
	Clear()
}

// State is a snapshot of the rotation. A zero State is EMPTY.
type State struct {
	Alerts            []domain.Alert
	Index             int
	TransitionEnabled bool
}

// Empty reports whether there is nothing to display.
func (s State) Empty() bool { return len(s.Alerts) == 0 }

// Current returns the alert at Index.
func (s State) Current() (domain.Alert, bool) {
	if s.Empty() {
		return domain.Alert{}, false
	}
	return s.Alerts[s.Index], true
}

// Controller owns the rotation state and its timer. State is replaced as a
// whole on every Update.
type Controller struct {
	clock           clockwork.Clock
	displayInterval time.Duration
	animationSpeed  time.Duration
	displays        []Display
	logger          *slog.Logger
	metrics         *observability.Metrics

	mu     sync.Mutex
	state  State
	gen    uint64
	ticker clockwork.Ticker
	stop   chan struct{}
}

// NewController creates a Controller in the EMPTY state.
func NewController(clock clockwork.Clock, displayInterval, animationSpeed time.Duration, logger *slog.Logger, metrics *observability.Metrics, displays ...Display) *Controller {
	return &Controller{
		clock:           clock,
		displayInterval: displayInterval,
		animationSpeed:  animationSpeed,
		displays:        displays,
		logger:          logger,
		metrics:         metrics,
	}
}

// PublishCycle feeds an accepted poll cycle into the rotation.
func (c *Controller) PublishCycle(_ context.Context, cycle domain.Cycle) error {
	c.Update(cycle.Alerts)
	return nil
}

// Update replaces the ranked list. An empty list clears the displays and stops
// the timer. A non-empty list shows its first alert immediately and restarts
// the timer; the index always resets to 0.
func (c *Controller) Update(alerts []domain.Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	if len(alerts) == 0 {
		c.state = State{}
		c.logger.Debug("rotation cleared")
		for _, d := range c.displays {
			d.Clear()
		}
		return
	}

	c.state = State{
		Alerts:            slices.Clone(alerts),
		TransitionEnabled: len(alerts) > 1,
	}
	c.showLocked()

	period := c.period(c.state.TransitionEnabled)
	ticker := c.clock.NewTicker(period)
	stop := make(chan struct{})
	c.ticker, c.stop = ticker, stop
	go c.loop(c.gen, ticker, stop)

	c.logger.Debug("rotation started", "alerts", len(alerts), "period", period)
}

// State returns a copy of the current rotation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Alerts = slices.Clone(s.Alerts)
	return s
}

// Close stops the timer. Displays are left as they are.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) period(transitionEnabled bool) time.Duration {
	if transitionEnabled {
		return c.displayInterval + c.animationSpeed
	}
	return c.displayInterval
}

// stopLocked cancels the active timer, if any. Bumping gen turns a tick that
// is already in flight into a no-op.
func (c *Controller) stopLocked() {
	c.gen++
	if c.ticker != nil {
		c.ticker.Stop()
		close(c.stop)
		c.ticker, c.stop = nil, nil
	}
}

func (c *Controller) loop(gen uint64, ticker clockwork.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			c.advance(gen)
		}
	}
}

func (c *Controller) advance(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state.Empty() {
		return
	}
	c.state.Index = (c.state.Index + 1) % len(c.state.Alerts)
	c.metrics.RotationTicks.Inc()
	c.showLocked()
}

func (c *Controller) showLocked() {
	frame := domain.Frame{
		Alert:             c.state.Alerts[c.state.Index],
		Index:             c.state.Index,
		Total:             len(c.state.Alerts),
		TransitionEnabled: c.state.TransitionEnabled,
		Period:            c.period(c.state.TransitionEnabled),
	}
	for _, d := range c.displays {
		d.Show(frame)
	}
}
