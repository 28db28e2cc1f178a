package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	event := domain.Event{
		ID:    "EONET_6543",
		Title: "Park Fire",
		Geometries: []domain.Geometry{
			{Date: now.Add(-time.Hour), Shape: domain.Polygon{Rings: [][]domain.Position{{{Lon: 0, Lat: 0}, {Lon: 2, Lat: 0}, {Lon: 2, Lat: 2}, {Lon: 0, Lat: 2}}}}},
		},
	}

	msg, err := serializeToMessage(event, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("EONET_6543"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "status", msg.Headers[0].Key)
	assert.Equal(t, []byte("open"), msg.Headers[0].Value)
	assert.Equal(t, "geometry_type", msg.Headers[1].Key)
	assert.Equal(t, []byte("Polygon"), msg.Headers[1].Value)
	assert.Equal(t, "published_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "EONET_6543", body["id"])
	assert.Equal(t, "open", body["status"])
	assert.Equal(t, []any{1.0, 1.0}, body["position"])
	assert.Contains(t, body, "geometries")
}

func TestSerializeToMessage_ClosedWithoutGeometry(t *testing.T) {
	closed := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	msg, err := serializeToMessage(domain.Event{ID: "EONET_1", Closed: &closed}, closed)
	require.NoError(t, err)

	assert.Equal(t, []byte("closed"), msg.Headers[0].Value)
	assert.Empty(t, msg.Headers[1].Value)
	assert.NotContains(t, string(msg.Value), `"position"`)

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "EONET_1", decoded.ID)
	assert.False(t, decoded.IsOpen())
}

func TestWriter_PublishEmptyIsNoop(t *testing.T) {
	w := NewWriter([]string{"localhost:1"}, "wildfire-events", clockwork.NewFakeClock(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	assert.NoError(t, w.Publish(context.Background(), nil))
}
