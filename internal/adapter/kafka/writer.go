// Package kafka ingests briefs from a Kafka topic and publishes confirmed
// incidents to another, for deployments where briefs arrive from upstream
// collectors instead of the HTTP API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/levonter/corridor/internal/config"
	"github.com/levonter/corridor/internal/domain"
)

// Writer publishes incidents to the incident topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured incident topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaIncidentTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishIncident serializes and publishes a single incident.
func (w *Writer) PublishIncident(ctx context.Context, inc domain.Incident) error {
	msg, err := serializeToMessage(inc)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an incident into a Kafka message keyed by
// incident ID so edits to the same incident land in one partition.
func serializeToMessage(inc domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(inc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(inc.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(inc.Category)},
			{Key: "severity", Value: []byte(inc.Severity)},
		},
	}, nil
}
