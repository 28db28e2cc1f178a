package loader

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/wildfire-tracker/internal/config"
	"github.com/couchcryptid/wildfire-tracker/internal/domain"
)

func TestStateAvailability(t *testing.T) {
	errBoom := errors.New("boom")
	some := []domain.Event{{ID: "1"}}

	tests := []struct {
		name  string
		state State
		want  Availability
	}{
		{"initial", State{}, AvailabilityLoading},
		{"loading without data", State{Loading: true}, AvailabilityLoading},
		{"loading with cached data", State{Loading: true, Events: some, FromCache: true}, AvailabilityLoading},
		{"fresh", State{Events: some}, AvailabilityFresh},
		{"fresh empty list", State{Events: []domain.Event{}}, AvailabilityFresh},
		{"failed with data", State{Events: some, Err: errBoom, Stale: true}, AvailabilityStale},
		{"failed without data", State{Err: errBoom}, AvailabilityUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Availability())
		})
	}
}

func TestStateErrorMessage(t *testing.T) {
	assert.Empty(t, State{}.ErrorMessage())
	assert.Equal(t, "Rate limited by EONET (429). Try again later.", State{Err: domain.ErrRateLimited}.ErrorMessage())
}

func TestOptionsNormalized(t *testing.T) {
	o := Options{LimitDetailFetch: -3, DetailDelayMin: 200, DetailDelayMax: 100}.normalized()

	assert.Equal(t, domain.StatusOpen, o.Status)
	assert.Equal(t, DefaultLimit, o.Limit)
	assert.Equal(t, 0, o.LimitDetailFetch)
	assert.Equal(t, DefaultCacheKey, o.CacheKey)
	assert.Equal(t, DefaultCacheTTL, o.CacheTTL)
	assert.Equal(t, DefaultRetryAttempts, o.Retry.Attempts)
	assert.Equal(t, o.DetailDelayMin, o.DetailDelayMax)
}

func TestOptionsFromConfig(t *testing.T) {
	o := OptionsFromConfig(&config.Config{
		EventStatus:      "all",
		EventLimit:       20,
		DetailFetchLimit: 4,
		CacheKey:         "wildfires",
		CacheTTL:         time.Minute,
		RetryAttempts:    5,
	})

	assert.Equal(t, domain.StatusAll, o.Status)
	assert.Equal(t, 20, o.Limit)
	assert.Equal(t, 4, o.LimitDetailFetch)
	assert.Equal(t, "wildfires", o.CacheKey)
	assert.Equal(t, time.Minute, o.CacheTTL)
	assert.Equal(t, 5, o.Retry.Attempts)
	assert.Equal(t, DefaultRetryPolicy().ErrorBase, o.Retry.ErrorBase)
	assert.Equal(t, 150*time.Millisecond, o.DetailDelayMin)
}
