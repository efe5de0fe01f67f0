// Package kafka publishes merged incident batches to the archive topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/civicsignal/incident-feed/internal/config"
	"github.com/civicsignal/incident-feed/internal/domain"
)

// ArchiveWriter produces incident records to the archive Kafka topic.
// It implements pipeline.ArchiveSink.
type ArchiveWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewArchiveWriter creates a Kafka producer for the configured archive topic.
func NewArchiveWriter(cfg *config.Config, logger *slog.Logger) *ArchiveWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaArchiveTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &ArchiveWriter{writer: w, logger: logger}
}

// PublishBatch serializes and publishes a merged window of incidents to the
// archive topic in a single WriteMessages call for efficiency.
func (w *ArchiveWriter) PublishBatch(ctx context.Context, records []domain.Incident) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *ArchiveWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Incident into a Kafka message keyed by the
// record ID so replays of the same window compact cleanly.
func serializeToMessage(record domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "month", Value: []byte(record.Month)},
			{Key: "category", Value: []byte(record.Category)},
		},
	}, nil
}
