//go:build eonet

package eonet

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
	"github.com/couchcryptid/wildfire-tracker/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real EONET API and need outbound network access.
// Run with: go test -tags=eonet ./internal/adapter/eonet/ -v -count=1

func smokeClient() *Client {
	return NewClient(DefaultBaseURL, "wildfires", 15*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestSmoke_ListEvents(t *testing.T) {
	c := smokeClient()

	events, err := c.ListEvents(context.Background(), domain.ListQuery{Status: domain.StatusAll, Limit: 5})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(events), 5)

	for _, e := range events {
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.Title)
	}
}

func TestSmoke_EventGeometries(t *testing.T) {
	c := smokeClient()

	events, err := c.ListEvents(context.Background(), domain.ListQuery{Status: domain.StatusAll, Limit: 1})
	require.NoError(t, err)
	if len(events) == 0 {
		t.Skip("EONET returned no wildfire events")
	}

	geoms, err := c.EventGeometries(context.Background(), events[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, geoms)
}
