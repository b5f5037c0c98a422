package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-alert-feed/internal/config"
	"github.com/couchcryptid/weather-alert-feed/internal/domain"
	"github.com/couchcryptid/weather-alert-feed/internal/observability"
)

// Event types carried in the "event_type" header and the payload.
const (
	EventCycle   = "cycle"
	EventTick    = "tick"
	EventCleared = "cleared"
)

// rotationKey keys every rotation event so they land on one partition in order.
const rotationKey = "rotation"

// Event is the JSON payload written for every presentation event.
type Event struct {
	Type    string              `json:"type"`
	At      time.Time           `json:"at"`
	Cycle   *domain.Cycle       `json:"cycle,omitempty"`
	Frame   *domain.Frame       `json:"frame,omitempty"`
	Display *domain.DisplayText `json:"display,omitempty"`
}

// Publisher writes presentation events to a Kafka topic. It implements
// pipeline.Sink for poll cycles and rotation.Display for rotation ticks.
// Writes are asynchronous; delivery failures are logged and counted.
type Publisher struct {
	writer  *kafkago.Writer
	lang    string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates an async Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	p := &Publisher{
		lang:    cfg.Lang,
		logger:  logger,
		metrics: metrics,
	}
	p.writer = &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             p.complete,
	}
	return p
}

// PublishCycle writes one "cycle" event carrying the ranked list.
func (p *Publisher) PublishCycle(ctx context.Context, cycle domain.Cycle) error {
	msg, err := serializeCycle(cycle, time.Now().UTC())
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Show writes one "tick" event for the alert now on display.
func (p *Publisher) Show(frame domain.Frame) {
	msg, err := serializeFrame(frame, p.lang, time.Now().UTC())
	if err != nil {
		p.logger.Warn("serialize rotation event failed", "error", err)
		return
	}
	p.write(msg)
}

// Clear writes one "cleared" event.
func (p *Publisher) Clear() {
	msg, err := serializeCleared(time.Now().UTC())
	if err != nil {
		p.logger.Warn("serialize rotation event failed", "error", err)
		return
	}
	p.write(msg)
}

// Close flushes pending writes and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) write(msg kafkago.Message) {
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		p.metrics.EventPublishFails.Inc()
		p.logger.Warn("enqueue rotation event failed", "error", err)
	}
}

// complete is the async delivery callback.
func (p *Publisher) complete(messages []kafkago.Message, err error) {
	if err != nil {
		p.metrics.EventPublishFails.Add(float64(len(messages)))
		p.logger.Warn("kafka delivery failed", "messages", len(messages), "error", err)
		return
	}
	for _, m := range messages {
		p.metrics.EventsPublished.WithLabelValues(headerValue(m, "event_type")).Inc()
	}
}

func serializeCycle(cycle domain.Cycle, at time.Time) (kafkago.Message, error) {
	return serializeEvent([]byte(cycle.ID), Event{Type: EventCycle, At: at, Cycle: &cycle})
}

func serializeFrame(frame domain.Frame, lang string, at time.Time) (kafkago.Message, error) {
	display := frame.Alert.Display(lang)
	return serializeEvent([]byte(rotationKey), Event{Type: EventTick, At: at, Frame: &frame, Display: &display})
}

func serializeCleared(at time.Time) (kafkago.Message, error) {
	return serializeEvent([]byte(rotationKey), Event{Type: EventCleared, At: at})
}

// serializeEvent marshals an Event into a Kafka message.
func serializeEvent(key []byte, event Event) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s event: %w", event.Type, err)
	}
	return kafkago.Message{
		Key:   key,
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "produced_at", Value: []byte(event.At.Format(time.RFC3339))},
		},
	}, nil
}

func headerValue(m kafkago.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
