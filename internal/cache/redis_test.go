//go:build redis

package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a reachable Redis. Run with:
// REDIS_ADDR=localhost:6379 go test -tags=redis ./internal/cache/ -run Redis -v -count=1

func TestRedis_GetSet(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	r := NewRedis(addr, os.Getenv("REDIS_PASSWORD"), 0)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Ping(context.Background()))

	key := "wildfire_tracker_test_" + t.Name()
	t.Cleanup(func() { r.client.Del(context.Background(), key) })

	_, ok := mustGet(t, r, key)
	assert.False(t, ok)

	mustSet(t, r, key, "snapshot")
	v, ok := mustGet(t, r, key)
	require.True(t, ok)
	assert.Equal(t, "snapshot", string(v))
}
