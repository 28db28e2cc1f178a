package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
)

// Writer publishes event snapshots to a Kafka topic, one message per event
// keyed by event ID. It implements loader.Publisher.
type Writer struct {
	writer *kafkago.Writer
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the snapshot topic.
func NewWriter(brokers []string, topic string, clock clockwork.Clock, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, clock: clock, logger: logger}
}

// Publish writes every event of a snapshot in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	publishedAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i], publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("snapshot published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// eventMessage is the message body: the event plus fields consumers would
// otherwise have to derive.
type eventMessage struct {
	domain.Event
	Status      domain.Status    `json:"status"`
	Position    *domain.Position `json:"position,omitempty"`
	PublishedAt time.Time        `json:"published_at"`
}

// serializeToMessage marshals an Event into a Kafka message.
func serializeToMessage(event domain.Event, publishedAt time.Time) (kafkago.Message, error) {
	body := eventMessage{
		Event:       event,
		Status:      domain.StatusOpen,
		PublishedAt: publishedAt,
	}
	if !event.IsOpen() {
		body.Status = domain.StatusClosed
	}
	if pos, ok := event.CurrentPosition(); ok {
		body.Position = &pos
	}

	data, err := json.Marshal(body)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event %s: %w", event.ID, err)
	}

	geometryType := ""
	if g, ok := event.Latest(); ok && g.Shape != nil {
		geometryType = string(g.Shape.Kind())
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(body.Status)},
			{Key: "geometry_type", Value: []byte(geometryType)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
