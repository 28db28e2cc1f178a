// Package cache persists the last merged event list as a timestamped
// snapshot and serves it back while it is younger than a TTL.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
	"github.com/couchcryptid/wildfire-tracker/internal/observability"
)

var (
	errMalformed = errors.New("malformed cache entry")
	errExpired   = errors.New("cache entry expired")
)

// Entry is a decoded snapshot.
type Entry struct {
	// Timestamp is the write time in milliseconds since the Unix epoch.
	Timestamp int64
	Data      []domain.Event
}

// Time returns the write time.
func (e Entry) Time() time.Time { return time.UnixMilli(e.Timestamp).UTC() }

// Age is how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration { return now.Sub(e.Time()) }

type wireEntry struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Encode serializes events as {"timestamp": <epoch ms>, "data": [...]}.
func Encode(at time.Time, events []domain.Event) ([]byte, error) {
	data, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("encode events: %w", err)
	}
	return json.Marshal(wireEntry{Timestamp: at.UnixMilli(), Data: data})
}

// Decode parses a snapshot and checks it against ttl. A zero timestamp or a
// missing/null data field is malformed; an entry older than ttl is expired.
func Decode(raw []byte, now time.Time, ttl time.Duration) (Entry, error) {
	var w wireEntry
	if err := json.Unmarshal(raw, &w); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", errMalformed, err)
	}
	if w.Timestamp == 0 || len(w.Data) == 0 || bytes.Equal(w.Data, []byte("null")) {
		return Entry{}, errMalformed
	}

	var events []domain.Event
	if err := json.Unmarshal(w.Data, &events); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", errMalformed, err)
	}

	e := Entry{Timestamp: w.Timestamp, Data: events}
	if e.Age(now) > ttl {
		return Entry{}, errExpired
	}
	return e, nil
}

// Store reads and writes snapshots through a Backend. It never returns
// errors: every failure is logged, counted and treated as a miss (on read)
// or ignored (on write).
type Store struct {
	backend Backend
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStore wraps a backend.
func NewStore(backend Backend, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		backend: backend,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Read returns the snapshot under key when it exists, decodes and is no
// older than ttl.
func (s *Store) Read(ctx context.Context, key string, ttl time.Duration) (Entry, bool) {
	raw, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Debug("cache read failed", "cache_key", key, "error", err)
		s.metrics.CacheLookups.WithLabelValues("error").Inc()
		return Entry{}, false
	}
	if !found {
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
		return Entry{}, false
	}

	entry, err := Decode(raw, s.clock.Now(), ttl)
	switch {
	case errors.Is(err, errExpired):
		s.metrics.CacheLookups.WithLabelValues("expired").Inc()
		return Entry{}, false
	case err != nil:
		s.logger.Debug("cache entry unreadable", "cache_key", key, "error", err)
		s.metrics.CacheLookups.WithLabelValues("malformed").Inc()
		return Entry{}, false
	}

	s.metrics.CacheLookups.WithLabelValues("hit").Inc()
	return entry, true
}

// Write stores events under key stamped with the current time.
func (s *Store) Write(ctx context.Context, key string, events []domain.Event) {
	raw, err := Encode(s.clock.Now(), events)
	if err == nil {
		err = s.backend.Set(ctx, key, raw)
	}
	if err != nil {
		s.logger.Debug("cache write failed", "cache_key", key, "error", err)
		s.metrics.CacheWrites.WithLabelValues("error").Inc()
		return
	}
	s.metrics.CacheWrites.WithLabelValues("success").Inc()
}
