package loader

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
)

// retryDelay computes the wait before the next list attempt. attempt is
// zero-based: the wait after the first failure uses attempt 0.
func retryDelay(p RetryPolicy, err error, attempt int, now time.Time, jitter func(time.Duration) time.Duration) time.Duration {
	if domain.IsRateLimited(err) {
		wait := exponential(p.RateLimitBase, p.MaxBackoff, attempt)
		if header, ok := domain.RetryAfter(err); ok {
			if d, ok := parseRetryAfter(header, now, p.MinRetryAfter); ok {
				wait = d
			}
		}
		return wait + jitter(p.RateLimitJitter)
	}
	return exponential(p.ErrorBase, p.MaxBackoff, attempt) + jitter(p.ErrorJitter)
}

// exponential doubles base attempt times, never exceeding ceiling.
func exponential(base, ceiling time.Duration, attempt int) time.Duration {
	if ceiling <= 0 {
		ceiling = time.Duration(math.MaxInt64)
	}
	d := min(base, ceiling)
	for range attempt {
		if d > ceiling/2 {
			return ceiling
		}
		d = retry.NextBackoff(d, ceiling)
	}
	return d
}

// parseRetryAfter accepts delta-seconds (fractional allowed) or an HTTP-date.
// Dates in the past, or closer than floor, wait floor.
func parseRetryAfter(v string, now time.Time, floor time.Duration) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, false
		}
		if secs*float64(time.Second) >= math.MaxInt64 {
			return time.Duration(math.MaxInt64), true
		}
		return max(time.Duration(secs*float64(time.Second)), 0), true
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(at.Sub(now), floor), true
	}
	return 0, false
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}

// clockSleeper waits on the loader's clock and gives up when ctx is done.
func clockSleeper(clock clockwork.Clock) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		if d <= 0 {
			return ctx.Err()
		}
		timer := clock.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.Chan():
			return nil
		}
	}
}
