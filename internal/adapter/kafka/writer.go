package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/fdv-converter/internal/config"
	"github.com/couchcryptid/fdv-converter/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes batch job events to a Kafka topic.
// It implements pipeline.EventSink.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured job-event topic.
// Events of one run share a key so they land on one partition in order.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes the events in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, events []domain.JobEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish job events: %w", err)
	}
	w.logger.Debug("job events published", "count", len(msgs), "run_id", events[0].RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a JobEvent into a Kafka message keyed by run id.
func serializeToMessage(event domain.JobEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize job event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(event.Status)},
			{Key: "monitor_type", Value: []byte(event.MonitorType)},
			{Key: "processed_at", Value: []byte(event.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
