package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

// minRefreshInterval keeps the periodic refresh from hammering EONET.
const minRefreshInterval = time.Minute

// Config holds all service settings, populated from environment variables.
type Config struct {
	// EONET API.
	EONETBaseURL     string
	EONETTimeout     time.Duration
	EONETCategory    string
	EventStatus      string
	EventLimit       int
	DetailFetchLimit int
	RetryAttempts    int

	// Snapshot cache.
	CacheKey        string
	CacheTTL        time.Duration
	CacheBackend    string
	CacheMaxEntries int
	CacheSQLitePath string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	RefreshInterval time.Duration

	HTTPAddr     string
	APIRateLimit int

	// Optional snapshot publishing.
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	eonetTimeout, err := parseDuration("EONET_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	if eonetTimeout <= 0 {
		return nil, errors.New("invalid EONET_TIMEOUT")
	}

	cacheTTL, err := parseDuration("CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	if cacheTTL <= 0 {
		return nil, errors.New("invalid CACHE_TTL")
	}

	refresh, err := parseDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	if refresh != 0 && refresh < minRefreshInterval {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: must be 0 or at least %s", minRefreshInterval)
	}

	cfg := &Config{
		EONETBaseURL:  sharedcfg.EnvOrDefault("EONET_BASE_URL", "https://eonet.gsfc.nasa.gov/api/v3"),
		EONETTimeout:  eonetTimeout,
		EONETCategory: sharedcfg.EnvOrDefault("EONET_CATEGORY", "wildfires"),
		EventStatus:   sharedcfg.EnvOrDefault("EVENT_STATUS", "open"),

		CacheKey:        sharedcfg.EnvOrDefault("CACHE_KEY", "eonet_events_cache"),
		CacheTTL:        cacheTTL,
		CacheBackend:    sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheBackendMemory),
		CacheSQLitePath: sharedcfg.EnvOrDefault("CACHE_SQLITE_PATH", "./data/cache.db"),
		RedisAddr:       sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   sharedcfg.EnvOrDefault("REDIS_PASSWORD", ""),

		RefreshInterval: refresh,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),

		KafkaBrokers: parseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "wildfire-events"),

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	for _, f := range []struct {
		key string
		def string
		dst *int
	}{
		{"EVENT_LIMIT", "50", &cfg.EventLimit},
		{"DETAIL_FETCH_LIMIT", "10", &cfg.DetailFetchLimit},
		{"RETRY_ATTEMPTS", "3", &cfg.RetryAttempts},
		{"CACHE_MAX_ENTRIES", "64", &cfg.CacheMaxEntries},
		{"REDIS_DB", "0", &cfg.RedisDB},
		{"API_RATE_LIMIT", "5", &cfg.APIRateLimit},
	} {
		n, err := strconv.Atoi(sharedcfg.EnvOrDefault(f.key, f.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s", f.key)
		}
		*f.dst = n
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.EventStatus {
	case "open", "closed", "all":
	default:
		return errors.New("invalid EVENT_STATUS: must be open, closed or all")
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendSQLite, CacheBackendRedis:
	default:
		return errors.New("invalid CACHE_BACKEND: must be memory, sqlite or redis")
	}
	if c.EONETBaseURL == "" {
		return errors.New("EONET_BASE_URL is required")
	}
	if c.CacheKey == "" {
		return errors.New("CACHE_KEY is required")
	}
	if c.EventLimit <= 0 {
		return errors.New("invalid EVENT_LIMIT: must be positive")
	}
	if c.DetailFetchLimit < 0 {
		return errors.New("invalid DETAIL_FETCH_LIMIT: must not be negative")
	}
	if c.RetryAttempts < 1 {
		return errors.New("invalid RETRY_ATTEMPTS: must be at least 1")
	}
	if c.CacheMaxEntries <= 0 {
		return errors.New("invalid CACHE_MAX_ENTRIES: must be positive")
	}
	if c.RedisDB < 0 {
		return errors.New("invalid REDIS_DB: must not be negative")
	}
	if c.APIRateLimit <= 0 {
		return errors.New("invalid API_RATE_LIMIT: must be positive")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// PublishEnabled reports whether snapshots should be written to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(raw)
}
