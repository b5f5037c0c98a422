package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes used as the "outcome" label on FetchRequests.
const (
	OutcomeSuccess        = "success"
	OutcomeHTTPError      = "http_error"
	OutcomeTimeout        = "timeout"
	OutcomeTransportError = "transport_error"
	OutcomeParseError     = "parse_error"
)

// Metrics holds the Prometheus collectors for the alert pipeline.
type Metrics struct {
	FetchRequests *prometheus.CounterVec // labels: outcome
	FetchDuration prometheus.Histogram

	CyclesCompleted   prometheus.Counter
	CyclesDiscarded   prometheus.Counter
	CycleDuration     prometheus.Histogram
	AlertsRanked      *prometheus.GaugeVec // labels: severity
	AlertsFiltered    prometheus.Counter
	PollerRunning     prometheus.Gauge
	RotationTicks     prometheus.Counter
	EventsPublished   *prometheus.CounterVec // labels: event
	EventPublishFails prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "fetch_requests_total",
			Help:      "Feed retrievals by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_alerts",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one feed retrieval including parsing.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		CyclesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "poll_cycles_total",
			Help:      "Poll cycles whose result was accepted.",
		}),
		CyclesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "poll_cycles_discarded_total",
			Help:      "Poll cycles dropped because a newer cycle was already accepted.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_alerts",
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of a complete fetch-parse-classify-rank cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}),
		AlertsRanked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "alerts_active",
			Help:      "Alerts in the most recently accepted ranked list, by severity.",
		}, []string{"severity"}),
		AlertsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "placeholders_filtered_total",
			Help:      "Placeholder entries dropped during classification.",
		}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_alerts",
			Name:      "poller_running",
			Help:      "1 when the poller is active, 0 when shut down.",
		}),
		RotationTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "rotation_ticks_total",
			Help:      "Rotation advances to the next alert.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "events_published_total",
			Help:      "Presentation events written to Kafka, by event type.",
		}, []string{"event"}),
		EventPublishFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_alerts",
			Name:      "event_publish_errors_total",
			Help:      "Presentation events that failed to reach Kafka.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FetchRequests,
		m.FetchDuration,
		m.CyclesCompleted,
		m.CyclesDiscarded,
		m.CycleDuration,
		m.AlertsRanked,
		m.AlertsFiltered,
		m.PollerRunning,
		m.RotationTicks,
		m.EventsPublished,
		m.EventPublishFails,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewStandaloneMetrics creates Metrics on a private registry, for one-shot
// commands that expose no /metrics endpoint.
func NewStandaloneMetrics() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewStandaloneMetrics()
}
