// Package loader fetches wildfire events from EONET, backfills missing
// geometries, and publishes the merged list as observable state, serving a
// cached snapshot first when one is fresh enough.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-tracker/internal/cache"
	"github.com/couchcryptid/wildfire-tracker/internal/domain"
	"github.com/couchcryptid/wildfire-tracker/internal/observability"
)

// CacheStore holds the last merged list between loads and restarts.
type CacheStore interface {
	Read(ctx context.Context, key string, ttl time.Duration) (cache.Entry, bool)
	Write(ctx context.Context, key string, events []domain.Event)
}

// Publisher receives every freshly merged list.
type Publisher interface {
	Publish(ctx context.Context, events []domain.Event) error
}

// Option customizes a Loader.
type Option func(*Loader)

// WithClock sets the time source for sleeps and Retry-After dates.
func WithClock(c clockwork.Clock) Option {
	return func(l *Loader) { l.clock = c }
}

// WithSleeper replaces the wait between attempts and between backfills.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loader) { l.sleep = sleep }
}

// WithJitter replaces the random jitter source. It receives the exclusive upper bound.
func WithJitter(jitter func(limit time.Duration) time.Duration) Option {
	return func(l *Loader) { l.jitter = jitter }
}

// WithPublisher forwards each fresh list to p. Publish failures are logged only.
func WithPublisher(p Publisher) Option {
	return func(l *Loader) { l.publisher = p }
}

// WithObserver calls fn with a copy of the state after every change.
func WithObserver(fn func(State)) Option {
	return func(l *Loader) { l.observers = append(l.observers, fn) }
}

// Loader owns the event state. Load may be called concurrently. Supersession
// takes effect when a load commits its outcome: once a newer load has
// committed, results from older loads are dropped. A load that never commits
// (because it was cancelled) supersedes nothing.
type Loader struct {
	source    domain.EventSource
	cache     CacheStore
	publisher Publisher
	observers []func(State)
	opts      Options
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(limit time.Duration) time.Duration

	generation atomic.Uint64
	ready      atomic.Bool

	mu    sync.RWMutex
	state State
	// committed is the newest generation whose outcome reached state.
	committed uint64
	inflight  int
}

// New creates a Loader.
func New(source domain.EventSource, store CacheStore, opts Options, logger *slog.Logger, metrics *observability.Metrics, options ...Option) *Loader {
	l := &Loader{
		source:  source,
		cache:   store,
		opts:    opts.normalized(),
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
		jitter:  randomJitter,
	}
	for _, o := range options {
		o(l)
	}
	if l.sleep == nil {
		l.sleep = clockSleeper(l.clock)
	}
	return l
}

// State returns a snapshot of the current state. The Events slice is shared
// and must not be modified.
func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// CheckReadiness returns nil once any event list, cached or fresh, has been published.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("no event data loaded yet")
	}
	return nil
}

// Refetch runs a load that was explicitly requested.
func (l *Loader) Refetch(ctx context.Context) Result {
	return l.Load(ctx, true)
}

// Load runs one full cycle: publish a fresh cached snapshot if there is one,
// fetch the list with retries, backfill missing geometries, merge, publish
// and cache the result. A load finishing after a newer one has committed
// returns its data but neither publishes nor caches it. A cancelled load
// writes nothing except clearing Loading when it was the last one running.
// force only affects logging and metrics.
func (l *Loader) Load(ctx context.Context, force bool) Result {
	gen := l.generation.Add(1)
	start := l.clock.Now()
	trigger := "auto"
	if force {
		trigger = "forced"
	}
	l.logger.Debug("load started", "generation", gen, "force", force)

	l.begin(ctx)
	defer l.end()

	if entry, ok := l.cache.Read(ctx, l.opts.CacheKey, l.opts.CacheTTL); ok {
		l.logger.Debug("serving cached events", "cache_key", l.opts.CacheKey, "count", len(entry.Data), "age", entry.Age(l.clock.Now()))
		l.update(ctx, gen, false, func(s *State) {
			s.Events = entry.Data
			s.FromCache = true
			s.Stale = false
			s.UpdatedAt = entry.Time()
		})
	}

	list, err := l.fetchList(ctx)
	if err != nil {
		return l.fail(ctx, gen, trigger, "list", err)
	}

	missing, _ := domain.PartitionMissing(list)
	scheduled := missing[:min(len(missing), l.opts.LimitDetailFetch)]
	backfill, err := l.backfill(ctx, scheduled)
	if err != nil {
		return l.fail(ctx, gen, trigger, "detail", err)
	}

	merged := domain.MergeGeometries(list, backfill)
	if err := ctx.Err(); err != nil {
		l.metrics.LoadsTotal.WithLabelValues(trigger, "cancelled").Inc()
		return Result{Err: err}
	}

	now := l.clock.Now()
	published := l.update(ctx, gen, true, func(s *State) {
		s.Events = merged
		s.Err = nil
		s.FromCache = false
		s.Stale = false
		s.UpdatedAt = now
	})

	stillMissing, _ := domain.PartitionMissing(merged)
	l.logger.Debug("events published",
		"generation", gen,
		"count", len(merged),
		"with_geometry", len(merged)-len(stillMissing),
		"backfilled", len(backfill),
		"superseded", !published,
	)

	outcome := "success"
	if published {
		l.cache.Write(ctx, l.opts.CacheKey, merged)
		l.metrics.EventsLoaded.Set(float64(len(merged)))
		l.metrics.EventsMissingGeometry.Set(float64(len(stillMissing)))
		l.metrics.LastSuccess.Set(float64(now.Unix()))
		l.publish(ctx, merged)
	} else {
		outcome = "superseded"
	}
	l.metrics.LoadsTotal.WithLabelValues(trigger, outcome).Inc()
	l.metrics.LoadDuration.Observe(l.clock.Since(start).Seconds())

	return Result{Data: merged}
}

// fetchList requests the event list up to Retry.Attempts times. Protocol
// errors and cancellation end the loop immediately; there is no wait after
// the final attempt.
func (l *Loader) fetchList(ctx context.Context) ([]domain.Event, error) {
	policy := l.opts.Retry
	q := domain.ListQuery{Status: l.opts.Status, Limit: l.opts.Limit}

	var lastErr error
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		events, err := l.source.ListEvents(ctx, q)
		if err == nil {
			l.metrics.ListAttempts.WithLabelValues("success").Inc()
			return events, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, domain.ErrUnexpectedResponse) {
			l.metrics.ListAttempts.WithLabelValues("protocol").Inc()
			return nil, err
		}

		if domain.IsRateLimited(err) {
			l.metrics.ListAttempts.WithLabelValues("rate_limited").Inc()
		} else {
			l.metrics.ListAttempts.WithLabelValues("error").Inc()
		}
		lastErr = err
		if attempt == policy.Attempts-1 {
			break
		}

		wait := retryDelay(policy, err, attempt, l.clock.Now(), l.jitter)
		l.logger.Warn("list events failed, retrying",
			"attempt", attempt+1,
			"max_attempts", policy.Attempts,
			"wait", wait,
			"error", err,
		)
		l.metrics.RetryWait.Observe(wait.Seconds())
		if err := l.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// backfill fetches geometries for each event in order, pausing between
// requests. A 429 stops the whole load with ErrRateLimited; any other
// failure or an empty result skips that event.
func (l *Loader) backfill(ctx context.Context, events []domain.Event) (map[string][]domain.Geometry, error) {
	found := make(map[string][]domain.Geometry, len(events))
	for i, ev := range events {
		if i > 0 {
			if err := l.sleep(ctx, l.detailDelay()); err != nil {
				return nil, err
			}
		}

		geoms, err := l.source.EventGeometries(ctx, ev.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if domain.IsRateLimited(err) {
				l.metrics.DetailFetches.WithLabelValues("rate_limited").Inc()
				l.logger.Warn("geometry backfill rate limited, aborting load",
					"event_id", ev.ID,
					"fetched", i,
					"scheduled", len(events),
				)
				return nil, domain.ErrRateLimited
			}
			l.metrics.DetailFetches.WithLabelValues("error").Inc()
			l.logger.Debug("geometry backfill failed, skipping event", "event_id", ev.ID, "error", err)
			continue
		}
		if len(geoms) == 0 {
			l.metrics.DetailFetches.WithLabelValues("empty").Inc()
			continue
		}

		l.metrics.DetailFetches.WithLabelValues("success").Inc()
		found[ev.ID] = geoms
	}
	return found, nil
}

func (l *Loader) detailDelay() time.Duration {
	return l.opts.DetailDelayMin + l.jitter(l.opts.DetailDelayMax-l.opts.DetailDelayMin)
}

// fail records err in the state unless the load was cancelled. Events
// already published stay in place.
func (l *Loader) fail(ctx context.Context, gen uint64, trigger, stage string, err error) Result {
	if ctxErr := ctx.Err(); ctxErr != nil {
		l.metrics.LoadsTotal.WithLabelValues(trigger, "cancelled").Inc()
		return Result{Err: ctxErr}
	}

	l.logger.Warn("load failed", "stage", stage, "generation", gen, "error", err)
	l.update(ctx, gen, true, func(s *State) {
		s.Err = err
		s.Stale = s.Events != nil
	})

	outcome := "error"
	if errors.Is(err, domain.ErrRateLimited) || domain.IsRateLimited(err) {
		outcome = "rate_limited"
	}
	l.metrics.LoadsTotal.WithLabelValues(trigger, outcome).Inc()
	return Result{Err: err}
}

// begin marks a load as running. A load whose context is already done
// still counts as in flight so end stays balanced.
func (l *Loader) begin(ctx context.Context) {
	l.mu.Lock()
	l.inflight++
	if ctx.Err() != nil {
		l.mu.Unlock()
		return
	}
	l.state.Loading = true
	l.state.Err = nil
	snapshot := l.state
	l.mu.Unlock()

	l.notify(snapshot)
}

// end clears Loading once no load is running. This covers loads that were
// cancelled or superseded and so never committed.
func (l *Loader) end() {
	l.mu.Lock()
	l.inflight--
	if l.inflight > 0 || !l.state.Loading {
		l.mu.Unlock()
		return
	}
	l.state.Loading = false
	snapshot := l.state
	l.mu.Unlock()

	l.notify(snapshot)
}

// update applies fn to the state if ctx is live and no newer load has
// committed. A final update commits gen; Loading then stays set only while
// other loads are still running. It reports whether the update was applied.
func (l *Loader) update(ctx context.Context, gen uint64, final bool, fn func(*State)) bool {
	if ctx.Err() != nil {
		return false
	}

	l.mu.Lock()
	if gen <= l.committed {
		l.mu.Unlock()
		return false
	}
	fn(&l.state)
	if final {
		l.committed = gen
		l.state.Loading = l.inflight > 1
	}
	snapshot := l.state
	l.mu.Unlock()

	l.notify(snapshot)
	return true
}

func (l *Loader) notify(snapshot State) {
	if snapshot.Events != nil {
		l.ready.Store(true)
	}
	for _, observe := range l.observers {
		observe(snapshot)
	}
}

func (l *Loader) publish(ctx context.Context, events []domain.Event) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, events); err != nil {
		l.metrics.PublishErrors.Inc()
		l.logger.Warn("publish snapshot failed", "error", err, "count", len(events))
		return
	}
	l.metrics.PublishedMessages.Add(float64(len(events)))
}
