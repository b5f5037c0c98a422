package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-alert-feed/internal/adapter/feed"
	"github.com/couchcryptid/weather-alert-feed/internal/config"
	"github.com/couchcryptid/weather-alert-feed/internal/domain"
	"github.com/couchcryptid/weather-alert-feed/internal/observability"
	"github.com/couchcryptid/weather-alert-feed/internal/pipeline"
)

// --- mocks ---

type recordingSink struct {
	cycles chan domain.Cycle
	err    error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{cycles: make(chan domain.Cycle, 16)}
}

func (s *recordingSink) PublishCycle(_ context.Context, c domain.Cycle) error {
	s.cycles <- c
	return s.err
}

func (s *recordingSink) next(t *testing.T) domain.Cycle {
	t.Helper()
	select {
	case c := <-s.cycles:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a published cycle")
		return domain.Cycle{}
	}
}

// gatedFetcher holds fetches for the gated locator until release is closed.
type gatedFetcher struct {
	stubFetcher
	gated   string
	started chan struct{}
	release chan struct{}
}

func (g *gatedFetcher) Fetch(ctx context.Context, host, locator string) ([]byte, error) {
	if locator == g.gated {
		close(g.started)
		<-g.release
	}
	return g.stubFetcher.Fetch(ctx, host, locator)
}

const ottawa = "/rss/battleboard/on61_e.xml"

func ottawaDocs() map[string]string {
	return map[string]string{
		ottawa: atomFeed(
			atomEntry("s", "SPECIAL WEATHER STATEMENT - RAIN, Ottawa", "Rain.", "2024-01-15T16:00:00Z"),
			atomEntry("y", "YELLOW WARNING - SNOWFALL, Ottawa", "Snow.", "2024-01-15T14:30:00Z"),
			atomEntry("r", "RED WARNING - WIND, Ottawa", "Wind.", "2024-01-15T09:00:00Z"),
		),
		"/rss/battleboard/on62_e.xml": atomFeed(
			atomEntry("n", "No alerts in effect, Kanata", "No alerts in effect.", "2024-01-15T10:00:00Z"),
		),
	}
}

func newPoller(t *testing.T, f pipeline.Fetcher, s pipeline.Settings, clock clockwork.Clock, sinks ...pipeline.Sink) *pipeline.Poller {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	c := pipeline.NewCoordinator(f, feed.Parse, 0, slog.Default(), metrics)
	return pipeline.New(c, s, time.Minute, clock, slog.Default(), metrics, sinks...)
}

func ottawaSettings() pipeline.Settings {
	return pipeline.Settings{
		APIHost: "weather.gc.ca",
		Lang:    "en",
		Regions: []domain.RegionSpec{{Code: "on61"}, {Code: "on62"}},
	}
}

// --- tests ---

func TestPoller_RunCycle_RanksAndPublishes(t *testing.T) {
	sink := newRecordingSink()
	p := newPoller(t, &stubFetcher{docs: ottawaDocs()}, ottawaSettings(), clockwork.NewRealClock(), sink)

	cycle, accepted := p.RunCycle(context.Background())
	require.True(t, accepted)

	assert.Equal(t, uint64(1), cycle.Seq)
	assert.NotEmpty(t, cycle.ID)
	assert.Equal(t, 2, cycle.Regions)
	assert.Equal(t, 2, cycle.Succeeded)
	assert.Zero(t, cycle.Failed)
	assert.Equal(t, 1, cycle.Filtered)

	require.Len(t, cycle.Alerts, 3)
	assert.Equal(t, domain.SeverityRed, cycle.Alerts[0].Severity)
	assert.Equal(t, domain.SeverityYellow, cycle.Alerts[1].Severity)
	assert.Equal(t, domain.SeverityNone, cycle.Alerts[2].Severity)

	published := sink.next(t)
	assert.Equal(t, cycle.ID, published.ID)

	last, ok := p.LastCycle()
	require.True(t, ok)
	assert.Equal(t, cycle.ID, last.ID)
}

func TestPoller_RunCycle_KeepsPlaceholders(t *testing.T) {
	s := ottawaSettings()
	s.KeepPlaceholders = true
	p := newPoller(t, &stubFetcher{docs: ottawaDocs()}, s, clockwork.NewRealClock())

	cycle, accepted := p.RunCycle(context.Background())
	require.True(t, accepted)

	assert.Zero(t, cycle.Filtered)
	require.Len(t, cycle.Alerts, 4)
	placeholders := 0
	for _, a := range cycle.Alerts {
		if a.Placeholder {
			placeholders++
			assert.Equal(t, domain.SeverityNone, a.Severity)
		}
	}
	assert.Equal(t, 1, placeholders)
}

func TestPoller_RunCycle_NoRegionsPublishesEmpty(t *testing.T) {
	sink := newRecordingSink()
	f := &stubFetcher{}
	p := newPoller(t, f, pipeline.Settings{APIHost: "weather.gc.ca", Lang: "en"}, clockwork.NewRealClock(), sink)

	cycle, accepted := p.RunCycle(context.Background())
	require.True(t, accepted)
	assert.Empty(t, cycle.Alerts)
	assert.Zero(t, f.peak.Load())
	assert.Empty(t, sink.next(t).Alerts)
}

func TestPoller_RunCycle_AllFetchesFail(t *testing.T) {
	sink := newRecordingSink()
	p := newPoller(t, &stubFetcher{}, ottawaSettings(), clockwork.NewRealClock(), sink)

	cycle, accepted := p.RunCycle(context.Background())
	require.True(t, accepted)
	assert.Equal(t, 2, cycle.Failed)
	assert.Empty(t, cycle.Alerts)
	assert.Empty(t, sink.next(t).Alerts)
}

func TestPoller_RunCycle_SinkErrorIsNotFatal(t *testing.T) {
	failing := newRecordingSink()
	failing.err = errors.New("broker down")
	ok := newRecordingSink()
	p := newPoller(t, &stubFetcher{docs: ottawaDocs()}, ottawaSettings(), clockwork.NewRealClock(), failing, ok)

	_, accepted := p.RunCycle(context.Background())
	require.True(t, accepted)
	failing.next(t)
	assert.Len(t, ok.next(t).Alerts, 3)
}

func TestPoller_LastCycleWins(t *testing.T) {
	docs := ottawaDocs()
	docs["/rss/battleboard/bc1_e.xml"] = atomFeed(
		atomEntry("b", "ORANGE WARNING - RAINFALL, Vancouver", "Rain.", "2024-01-15T11:00:00Z"),
	)
	f := &gatedFetcher{
		stubFetcher: stubFetcher{docs: docs},
		gated:       ottawa,
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	sink := newRecordingSink()
	p := newPoller(t, f, pipeline.Settings{
		APIHost: "weather.gc.ca",
		Lang:    "en",
		Regions: []domain.RegionSpec{{Code: "on61"}},
	}, clockwork.NewRealClock(), sink)

	stale := make(chan bool, 1)
	go func() {
		_, accepted := p.RunCycle(context.Background())
		stale <- accepted
	}()
	<-f.started

	p.UpdateSettings(pipeline.Settings{
		APIHost: "weather.gc.ca",
		Lang:    "en",
		Regions: []domain.RegionSpec{{Code: "bc1"}},
	})
	fresh, accepted := p.RunCycle(context.Background())
	require.True(t, accepted)
	assert.Equal(t, uint64(2), fresh.Seq)

	close(f.release)
	assert.False(t, <-stale, "older cycle finishing later is discarded")

	published := sink.next(t)
	require.Len(t, published.Alerts, 1)
	assert.Equal(t, "Vancouver", published.Alerts[0].RegionLabel)
	select {
	case c := <-sink.cycles:
		t.Fatalf("unexpected second publish of cycle %d", c.Seq)
	default:
	}

	last, _ := p.LastCycle()
	assert.Equal(t, fresh.ID, last.ID)
}

func TestPoller_RunCycle_CancelledContextNotPublished(t *testing.T) {
	sink := newRecordingSink()
	p := newPoller(t, &stubFetcher{docs: ottawaDocs()}, ottawaSettings(), clockwork.NewRealClock(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, accepted := p.RunCycle(ctx)
	assert.False(t, accepted)
	assert.Empty(t, sink.cycles)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPoller_CheckReadiness(t *testing.T) {
	p := newPoller(t, &stubFetcher{docs: ottawaDocs()}, ottawaSettings(), clockwork.NewRealClock())
	require.Error(t, p.CheckReadiness(context.Background()))

	_, accepted := p.RunCycle(context.Background())
	require.True(t, accepted)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPoller_Run_SchedulesAndRefreshes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sink := newRecordingSink()
	p := newPoller(t, &stubFetcher{docs: ottawaDocs()}, ottawaSettings(), clock, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	first := sink.next(t)
	assert.Len(t, first.Alerts, 3)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	second := sink.next(t)
	assert.Greater(t, second.Seq, first.Seq)

	p.Refresh()
	third := sink.next(t)
	assert.Greater(t, third.Seq, second.Seq)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestPoller_Refresh_Coalesces(t *testing.T) {
	p := newPoller(t, &stubFetcher{}, ottawaSettings(), clockwork.NewFakeClock())
	assert.NotPanics(t, func() {
		for range 10 {
			p.Refresh()
		}
	})
}

func TestPoller_RunConfigSync(t *testing.T) {
	clock := clockwork.NewFakeClock()
	p := newPoller(t, &stubFetcher{}, ottawaSettings(), clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loads := make(chan struct{}, 4)
	fail := true
	go p.RunConfigSync(ctx, 10*time.Minute, func() (pipeline.Settings, error) {
		defer func() { loads <- struct{}{} }()
		if fail {
			fail = false
			return pipeline.Settings{}, errors.New("file vanished")
		}
		return pipeline.Settings{APIHost: "meteo.gc.ca", Lang: "fr", Regions: []domain.RegionSpec{{Code: "qc147"}}}, nil
	})

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(10 * time.Minute)
	<-loads
	assert.Equal(t, "en", p.Settings().Lang, "failed load keeps previous settings")

	clock.Advance(10 * time.Minute)
	<-loads
	assert.Eventually(t, func() bool { return p.Settings().Lang == "fr" }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []domain.RegionSpec{{Code: "qc147"}}, p.Settings().Regions)
}

func TestNewSettings(t *testing.T) {
	s := pipeline.NewSettings(config.FeedSettings{
		APIHost: "weather.gc.ca",
		Lang:    "fr",
		Regions: []domain.RegionSpec{{Code: "qc147"}},
	}, true)

	assert.Equal(t, pipeline.Settings{
		APIHost:          "weather.gc.ca",
		Lang:             "fr",
		Regions:          []domain.RegionSpec{{Code: "qc147"}},
		KeepPlaceholders: true,
	}, s)
}
