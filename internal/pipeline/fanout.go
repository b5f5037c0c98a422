package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-alert-feed/internal/adapter/feed"
	"github.com/couchcryptid/weather-alert-feed/internal/domain"
	"github.com/couchcryptid/weather-alert-feed/internal/observability"
)

// Fetcher retrieves the raw feed document for one locator.
type Fetcher interface {
	Fetch(ctx context.Context, host, locator string) ([]byte, error)
}

// ParseFunc converts a feed document into raw records.
type ParseFunc func(locator string, data []byte) ([]domain.RawAlertRecord, error)

// FanOutResult is the joined outcome of one fan-out.
type FanOutResult struct {
	Records   []domain.RawAlertRecord
	Succeeded int
	Failures  []error
}

// Coordinator fetches and parses every locator concurrently and waits for all
// of them before returning.
type Coordinator struct {
	fetcher       Fetcher
	parse         ParseFunc
	maxConcurrent int
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewCoordinator creates a Coordinator. maxConcurrent <= 0 runs every fetch at
// once; otherwise at most maxConcurrent fetches are in flight.
func NewCoordinator(fetcher Fetcher, parse ParseFunc, maxConcurrent int, logger *slog.Logger, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{
		fetcher:       fetcher,
		parse:         parse,
		maxConcurrent: maxConcurrent,
		logger:        logger,
		metrics:       metrics,
	}
}

// Collect runs one fetch per locator and returns the records from every
// successful, parsable feed. Failures are logged and reported in the result;
// they never abort sibling fetches. Records and failures are joined in locator
// order regardless of which fetch finishes first. With no host or no locators
// it returns immediately.
func (c *Coordinator) Collect(ctx context.Context, host string, locators []string) FanOutResult {
	if host == "" || len(locators) == 0 {
		return FanOutResult{}
	}

	type outcome struct {
		records []domain.RawAlertRecord
		err     error
	}

	var (
		outcomes = make([]outcome, len(locators))
		wg       sync.WaitGroup
		sem      chan struct{}
	)
	if c.maxConcurrent > 0 {
		sem = make(chan struct{}, c.maxConcurrent)
	}

	for i, loc := range locators {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			records, err := c.fetchOne(ctx, host, loc)
			outcomes[i] = outcome{records: records, err: err}
		}()
	}
	wg.Wait()

	var res FanOutResult
	for _, o := range outcomes {
		if o.err != nil {
			res.Failures = append(res.Failures, o.err)
			continue
		}
		res.Succeeded++
		res.Records = append(res.Records, o.records...)
	}
	return res
}

func (c *Coordinator) fetchOne(ctx context.Context, host, locator string) ([]domain.RawAlertRecord, error) {
	start := time.Now()
	defer func() { c.metrics.FetchDuration.Observe(time.Since(start).Seconds()) }()

	data, err := c.fetcher.Fetch(ctx, host, locator)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(fetchOutcome(err)).Inc()
		c.logger.Warn("feed fetch failed", "locator", locator, "error", err)
		return nil, err
	}

	records, err := c.parse(locator, data)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(observability.OutcomeParseError).Inc()
		c.logger.Warn("feed parse failed", "locator", locator, "error", err)
		return nil, err
	}

	c.metrics.FetchRequests.WithLabelValues(observability.OutcomeSuccess).Inc()
	c.logger.Debug("feed fetched", "locator", locator, "entries", len(records))
	return records, nil
}

func fetchOutcome(err error) string {
	var fetchErr *feed.FetchError
	if !errors.As(err, &fetchErr) {
		return observability.OutcomeTransportError
	}
	switch {
	case fetchErr.Timeout:
		return observability.OutcomeTimeout
	case fetchErr.StatusCode != 0:
		return observability.OutcomeHTTPError
	default:
		return observability.OutcomeTransportError
	}
}
