package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEONETURL = "http://eonet.test/api/v3"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://eonet.gsfc.nasa.gov/api/v3", cfg.EONETBaseURL)
	assert.Equal(t, 10*time.Second, cfg.EONETTimeout)
	assert.Equal(t, "wildfires", cfg.EONETCategory)
	assert.Equal(t, "open", cfg.EventStatus)
	assert.Equal(t, 50, cfg.EventLimit)
	assert.Equal(t, 10, cfg.DetailFetchLimit)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, "eonet_events_cache", cfg.CacheKey)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)
	assert.Equal(t, 64, cfg.CacheMaxEntries)
	assert.Equal(t, "./data/cache.db", cfg.CacheSQLitePath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Empty(t, cfg.RedisPassword)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 5, cfg.APIRateLimit)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.PublishEnabled())
	assert.Equal(t, "wildfire-events", cfg.KafkaTopic)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("EONET_BASE_URL", testEONETURL)
	t.Setenv("EONET_TIMEOUT", "3s")
	t.Setenv("EONET_CATEGORY", "volcanoes")
	t.Setenv("EVENT_STATUS", "all")
	t.Setenv("EVENT_LIMIT", "200")
	t.Setenv("DETAIL_FETCH_LIMIT", "0")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("CACHE_KEY", "custom_key")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("CACHE_SQLITE_PATH", "/tmp/tracker.db")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REFRESH_INTERVAL", "0")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("API_RATE_LIMIT", "20")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "fires")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testEONETURL, cfg.EONETBaseURL)
	assert.Equal(t, 3*time.Second, cfg.EONETTimeout)
	assert.Equal(t, "volcanoes", cfg.EONETCategory)
	assert.Equal(t, "all", cfg.EventStatus)
	assert.Equal(t, 200, cfg.EventLimit)
	assert.Equal(t, 0, cfg.DetailFetchLimit)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, "custom_key", cfg.CacheKey)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, CacheBackendSQLite, cfg.CacheBackend)
	assert.Equal(t, "/tmp/tracker.db", cfg.CacheSQLitePath)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 20, cfg.APIRateLimit)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.PublishEnabled())
	assert.Equal(t, "fires", cfg.KafkaTopic)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"EONET_TIMEOUT", "bad"},
		{"EONET_TIMEOUT", "0s"},
		{"CACHE_TTL", "soon"},
		{"CACHE_TTL", "-1m"},
		{"REFRESH_INTERVAL", "30s"},
		{"REFRESH_INTERVAL", "often"},
		{"EVENT_STATUS", "burning"},
		{"EVENT_LIMIT", "0"},
		{"EVENT_LIMIT", "fifty"},
		{"DETAIL_FETCH_LIMIT", "-1"},
		{"RETRY_ATTEMPTS", "0"},
		{"CACHE_BACKEND", "memcached"},
		{"CACHE_MAX_ENTRIES", "0"},
		{"REDIS_DB", "x"},
		{"API_RATE_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_RefreshIntervalAtMinimum(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "1m")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
}
