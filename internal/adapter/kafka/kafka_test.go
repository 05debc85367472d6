package kafka

import (
	"context"
	"log/slog"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/levonter/corridor/internal/domain"
	"github.com/levonter/corridor/internal/extract"
	"github.com/levonter/corridor/internal/gazetteer"
	"github.com/levonter/corridor/internal/geocode"
	"github.com/levonter/corridor/internal/observability"
	"github.com/levonter/corridor/internal/pipeline"
	"github.com/levonter/corridor/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSerializeToMessage(t *testing.T) {
	inc := domain.Incident{
		ID:       "inc-1",
		Title:    "Shelling near Lankien",
		Category: domain.CategoryBombardment,
		Severity: domain.SeverityHigh,
		Date:     "2026-02-03",
		Lat:      8.28,
		Lon:      31.6,
	}

	msg, err := serializeToMessage(inc)
	require.NoError(t, err)

	assert.Equal(t, []byte("inc-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"category":"bombardment"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "category", msg.Headers[0].Key)
	assert.Equal(t, []byte("bombardment"), msg.Headers[0].Value)
	assert.Equal(t, "severity", msg.Headers[1].Key)
	assert.Equal(t, []byte("high"), msg.Headers[1].Value)
}

func TestParseBrief(t *testing.T) {
	p, err := parseBrief([]byte(`{"operation_id":"op-1","text":"Clashes in Duk.","source":"radio"}`))
	require.NoError(t, err)
	assert.Equal(t, "op-1", p.OperationID)
	assert.Equal(t, "Clashes in Duk.", p.Text)
	assert.Equal(t, "radio", p.Source)
}

type noopGeocoder struct{}

func (noopGeocoder) Search(ctx context.Context, query string, bias domain.BoundingBox) ([]domain.Coordinate, error) {
	return nil, nil
}

func TestHandleSkipsBriefForUnknownOperation(t *testing.T) {
	gaz := gazetteer.New([]gazetteer.Entry{{Name: "Lankien", Lat: 8.28, Lon: 31.6}})
	logger := slog.New(slog.DiscardHandler)
	resolver := geocode.New(gaz, noopGeocoder{}, 100, 0, logger)
	st := store.New()
	pl := pipeline.New(extract.New(gaz), resolver, st, observability.NewMetricsForTesting(), logger)
	c := &Consumer{store: st, pipeline: pl, logger: logger}

	// A brief for an operation that does not exist can never be processed,
	// so it is dropped (nil error) instead of being retried on every poll.
	msg := kafkago.Message{Value: []byte(`{"operation_id":"op-missing","text":"Heavy shelling near Lankien."}`)}
	require.NoError(t, c.handle(context.Background(), msg))
	assert.Empty(t, st.ListBriefs("op-missing", true))

	op := st.CreateOperation("South Sudan Corridors", domain.SeverityMedium, domain.Region{
		Center: domain.Coordinate{Lat: 7.5, Lon: 30.5},
		Bounds: &domain.BoundingBox{South: 3.0, West: 24.0, North: 13.0, East: 36.0},
	})
	msg = kafkago.Message{Value: []byte(`{"operation_id":"` + op.ID + `","text":"Heavy shelling near Lankien."}`)}
	require.NoError(t, c.handle(context.Background(), msg))
	require.Len(t, st.ListBriefs(op.ID, true), 1)
	assert.NotEmpty(t, st.ListDrafts(op.ID, domain.DraftPending))
}

func TestParseBriefRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", `{{`},
		{"missing operation_id", `{"text":"Clashes in Duk."}`},
		{"missing text", `{"operation_id":"op-1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBrief([]byte(tt.value))
			assert.Error(t, err)
		})
	}
}
