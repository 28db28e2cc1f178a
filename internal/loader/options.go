package loader

import (
	"time"

	"github.com/couchcryptid/wildfire-tracker/internal/config"
	"github.com/couchcryptid/wildfire-tracker/internal/domain"
)

// Defaults for Options.
const (
	DefaultCacheKey         = "eonet_events_cache"
	DefaultCacheTTL         = 10 * time.Minute
	DefaultRetryAttempts    = 3
	DefaultLimit            = 50
	DefaultLimitDetailFetch = 10
)

// Options configures a Loader.
type Options struct {
	Status domain.Status
	Limit  int
	// LimitDetailFetch caps geometry backfills per load. Zero disables backfill.
	LimitDetailFetch int
	CacheKey         string
	CacheTTL         time.Duration
	Retry            RetryPolicy
	// Backfill requests after the first wait a random duration in
	// [DetailDelayMin, DetailDelayMax).
	DetailDelayMin time.Duration
	DetailDelayMax time.Duration
}

// RetryPolicy shapes the waits between list attempts.
type RetryPolicy struct {
	Attempts int

	// On HTTP 429 the wait is RateLimitBase*2^attempt unless Retry-After
	// says otherwise, plus up to RateLimitJitter. An HTTP-date Retry-After
	// waits at least MinRetryAfter.
	RateLimitBase   time.Duration
	RateLimitJitter time.Duration
	MinRetryAfter   time.Duration

	// Any other failure waits ErrorBase*2^attempt plus up to ErrorJitter.
	ErrorBase   time.Duration
	ErrorJitter time.Duration

	// MaxBackoff caps the exponential part of either wait. Zero means no cap.
	MaxBackoff time.Duration
}

// DefaultRetryPolicy matches the pacing EONET tolerates in practice.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:        DefaultRetryAttempts,
		RateLimitBase:   time.Second,
		RateLimitJitter: 500 * time.Millisecond,
		MinRetryAfter:   time.Second,
		ErrorBase:       500 * time.Millisecond,
		ErrorJitter:     400 * time.Millisecond,
		MaxBackoff:      30 * time.Second,
	}
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		Status:           domain.StatusOpen,
		Limit:            DefaultLimit,
		LimitDetailFetch: DefaultLimitDetailFetch,
		CacheKey:         DefaultCacheKey,
		CacheTTL:         DefaultCacheTTL,
		Retry:            DefaultRetryPolicy(),
		DetailDelayMin:   150 * time.Millisecond,
		DetailDelayMax:   350 * time.Millisecond,
	}
}

// OptionsFromConfig overlays the EONET and cache settings of cfg on DefaultOptions.
func OptionsFromConfig(cfg *config.Config) Options {
	o := DefaultOptions()
	o.Status = domain.Status(cfg.EventStatus)
	o.Limit = cfg.EventLimit
	o.LimitDetailFetch = cfg.DetailFetchLimit
	o.CacheKey = cfg.CacheKey
	o.CacheTTL = cfg.CacheTTL
	o.Retry.Attempts = cfg.RetryAttempts
	return o
}

func (o Options) normalized() Options {
	if o.Status == "" {
		o.Status = domain.StatusOpen
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.LimitDetailFetch < 0 {
		o.LimitDetailFetch = 0
	}
	if o.CacheKey == "" {
		o.CacheKey = DefaultCacheKey
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Retry.Attempts < 1 {
		o.Retry.Attempts = DefaultRetryAttempts
	}
	if o.DetailDelayMax < o.DetailDelayMin {
		o.DetailDelayMax = o.DetailDelayMin
	}
	return o
}
