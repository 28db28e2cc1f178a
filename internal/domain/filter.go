package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DayLayout is the calendar-day format used by the date range inputs.
const DayLayout = "2006-01-02"

// endOfDay is the inclusive upper bound applied to Filter.To.
const endOfDay = 23*time.Hour + 59*time.Minute + 59*time.Second

// ParseDay parses a YYYY-MM-DD string as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// Filter narrows a list of events the way the sidebar controls do. Zero
// values disable the corresponding criterion.
type Filter struct {
	Status Status
	// From keeps events whose latest observation is on or after this instant.
	From time.Time
	// To keeps events whose latest observation is no later than 23:59:59 on this day.
	To     time.Time
	Search string
}

// Match reports whether e passes every active criterion. Date bounds are
// checked against the latest observation and are skipped for events that
// have none.
func (f Filter) Match(e Event) bool {
	if !MatchesStatus(e, f.Status) {
		return false
	}
	if latest, ok := e.Latest(); ok {
		if !f.From.IsZero() && latest.Date.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && latest.Date.After(f.To.Add(endOfDay)) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) {
			return false
		}
	}
	return true
}

// Apply returns the matching events ordered newest first. The input is not modified.
func (f Filter) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	SortByLatest(out)
	return out
}

// SortByLatest orders events by latest observation date, newest first.
// Events without observations sort last; ties keep their input order.
func SortByLatest(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return b.LatestDate().Compare(a.LatestDate())
	})
}

// MatchesStatus applies the open/closed criterion. StatusAll and the empty
// status match everything.
func MatchesStatus(e Event, s Status) bool {
	switch s {
	case StatusOpen:
		return e.IsOpen()
	case StatusClosed:
		return !e.IsOpen()
	default:
		return true
	}
}

// FilterByStatus keeps the events matching s, preserving order.
func FilterByStatus(events []Event, s Status) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if MatchesStatus(e, s) {
			out = append(out, e)
		}
	}
	return out
}
