package cache

import (
	"context"
	"fmt"

	"github.com/couchcryptid/wildfire-tracker/internal/config"
)

// Backend is a raw string-keyed byte store. It knows nothing about
// snapshots or expiry; Store layers both on top.
type Backend interface {
	// Get reports found=false with a nil error when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// OpenBackend builds the backend selected by CACHE_BACKEND. Networked and
// file backends are checked before returning, so a bad address fails startup.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		return NewMemory(cfg.CacheMaxEntries), nil
	case config.CacheBackendSQLite:
		return NewSQLite(cfg.CacheSQLitePath)
	case config.CacheBackendRedis:
		r := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("redis at %s: %w", cfg.RedisAddr, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
