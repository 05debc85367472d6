package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/levonter/corridor/internal/config"
	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/pipeline"
	"github.com/levonter/corridor/internal/store"
)

// briefPayload is the wire format of an inbound brief message.
type briefPayload struct {
	OperationID string `json:"operation_id"`
	Text        string `json:"text"`
	Source      string `json:"source,omitempty"`
}

// Consumer reads briefs from the brief topic, stores them, and runs the
// extraction pipeline on each. Offsets are committed only after a brief has
// been fully processed, so a crash mid-brief replays it.
type Consumer struct {
	reader   *kafkago.Reader
	store    *store.Store
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// NewConsumer creates a Kafka consumer for the configured brief topic.
func NewConsumer(cfg *config.Config, st *store.Store, pl *pipeline.Pipeline, logger *slog.Logger) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaBriefTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, store: st, pipeline: pl, logger: logger}
}

// Run consumes briefs until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("kafka brief consumer started", "topic", c.reader.Config().Topic)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("kafka brief consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("fetch message failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		if err := c.handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Leave the offset uncommitted so the brief is retried.
			c.logger.Error("process brief failed",
				"error", err,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn("commit offset failed", "error", err,
				"partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

// handle stores and processes one brief message. Malformed payloads and
// briefs naming an unknown operation are logged and dropped rather than
// retried; retrying cannot make them succeed.
func (c *Consumer) handle(ctx context.Context, msg kafkago.Message) error {
	payload, err := parseBrief(msg.Value)
	if err != nil {
		c.logger.Warn("malformed brief message, skipping",
			"error", err,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return nil
	}

	brief, err := c.store.CreateBrief(payload.OperationID, payload.Text, payload.Source)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("brief for unknown operation, skipping",
				"operation_id", payload.OperationID,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			return nil
		}
		return err
	}
	if _, err := c.pipeline.ProcessBrief(ctx, brief, nil); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("brief references missing data, skipping",
				"brief_id", brief.ID,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			return nil
		}
		return err
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// parseBrief validates an inbound brief payload.
func parseBrief(value []byte) (briefPayload, error) {
	var p briefPayload
	if err := json.Unmarshal(value, &p); err != nil {
		return briefPayload{}, err
	}
	if p.OperationID == "" {
		return briefPayload{}, errMissingOperationID
	}
	if p.Text == "" {
		return briefPayload{}, errMissingText
	}
	return p, nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
