//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/levonter/corridor/internal/adapter/kafka"
	"github.com/levonter/corridor/internal/config"
	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/extract"
	"github.com/levonter/corridor/internal/gazetteer"
	"github.com/levonter/corridor/internal/geocode"
	"github.com/levonter/corridor/internal/observability"
	"github.com/levonter/corridor/internal/pipeline"
	"github.com/levonter/corridor/internal/store"
)

const (
	testBriefTopic    = "test-briefs"
	testIncidentTopic = "test-incidents"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("corridor-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type fakeGeocoder struct{}

func (fakeGeocoder) Search(context.Context, string, domain.BoundingBox) ([]domain.Coordinate, error) {
	return nil, nil
}

func newPlanner(t *testing.T) (*store.Store, *pipeline.Pipeline) {
	t.Helper()
	gaz := gazetteer.New([]gazetteer.Entry{
		{Name: "Lankien", Lat: 8.28, Lon: 31.6},
		{Name: "Duk County", Lat: 7.7, Lon: 31.3},
	})
	resolver := geocode.New(gaz, fakeGeocoder{}, 100, 0, discardLogger())
	st := store.New()
	p := pipeline.New(extract.New(gaz), resolver, st, observability.NewMetricsForTesting(), discardLogger())
	return st, p
}

// TestBriefConsumerEndToEnd publishes briefs to Kafka, runs the consumer, and
// verifies drafts land in the store. A confirmed draft is then published to
// the incident topic and read back.
func TestBriefConsumerEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testBriefTopic)
	createTopic(t, broker, testIncidentTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaBriefTopic:    testBriefTopic,
		KafkaIncidentTopic: testIncidentTopic,
		KafkaGroupID:       fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
	}

	st, p := newPlanner(t)
	op := st.CreateOperation("South Sudan Corridors", domain.SeverityMedium, domain.Region{
		Center: domain.Coordinate{Lat: 7.5, Lon: 30.5},
		Bounds: &domain.BoundingBox{South: 3.0, West: 24.0, North: 13.0, East: 36.0},
	})

	// Publish one malformed message and one valid brief. The malformed one
	// must be skipped without stalling the consumer.
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testBriefTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	payload, err := json.Marshal(map[string]string{
		"operation_id": op.ID,
		"text":         "Heavy bombardment reported near Lankien on 2026-02-03. Cholera outbreak in Duk County.",
		"source":       "radio",
	})
	require.NoError(t, err)

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("good"), Value: payload},
	))

	consumer := kafka.NewConsumer(cfg, st, p, discardLogger())
	t.Cleanup(func() { _ = consumer.Close() })

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- consumer.Run(consumerCtx) }()

	// Wait for the pipeline to produce drafts from the valid brief.
	deadline := time.Now().Add(60 * time.Second)
	var drafts []domain.Draft
	for {
		drafts = st.ListDrafts(op.ID, domain.DraftPending)
		if len(drafts) >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(250 * time.Millisecond)
	}
	require.Len(t, drafts, 2, "expected two drafts from the valid brief")

	briefs := st.ListBriefs(op.ID, false)
	require.Len(t, briefs, 1, "malformed message must not create a brief")

	// Confirm one draft and publish the resulting incident.
	inc, err := st.ConfirmDraft(op.ID, drafts[0].ID, 8.28, 31.6)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.PublishIncident(ctx, inc))

	sink := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testIncidentTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = sink.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	msg, err := sink.ReadMessage(readCtx)
	readCancel()
	require.NoError(t, err, "read from incident topic")

	assert.Equal(t, inc.ID, string(msg.Key))
	var published domain.Incident
	require.NoError(t, json.Unmarshal(msg.Value, &published))
	assert.Equal(t, domain.SourceAIConfirmed, published.Source)
	assert.InDelta(t, 8.28, published.Lat, 1e-9)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, string(inc.Category), headers["category"])
	assert.Equal(t, string(inc.Severity), headers["severity"])

	consumerCancel()
	require.NoError(t, <-errCh)
}
