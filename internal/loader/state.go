package loader

import (
	"time"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
)

// State is the observable outcome of the most recent load.
type State struct {
	// Events is nil until a cached or fresh list has been published.
	Events  []domain.Event
	Loading bool
	Err     error
	// FromCache is set while Events is a cached snapshot not yet replaced
	// by a fresh load.
	FromCache bool
	// Stale is set when the latest load failed but earlier Events are kept.
	Stale     bool
	UpdatedAt time.Time
}

// Availability summarizes State for presentation.
type Availability string

const (
	AvailabilityLoading     Availability = "loading"
	AvailabilityFresh       Availability = "fresh"
	AvailabilityStale       Availability = "stale"
	AvailabilityUnavailable Availability = "unavailable"
)

// Availability distinguishes the two error banners: stale data with a
// failed refresh, and no data at all.
func (s State) Availability() Availability {
	switch {
	case s.Err != nil && s.Events != nil:
		return AvailabilityStale
	case s.Err != nil:
		return AvailabilityUnavailable
	case s.Loading || s.Events == nil:
		return AvailabilityLoading
	default:
		return AvailabilityFresh
	}
}

// ErrorMessage is the user-facing error text, or "".
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Result is what a single Load returns to its caller.
type Result struct {
	Data []domain.Event
	Err  error
}
