package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status selects events by open/closed state.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
	StatusAll    Status = "all"
)

// ParseStatus validates a status string. The empty string maps to StatusAll.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusClosed, StatusAll:
		return Status(s), nil
	case "":
		return StatusAll, nil
	default:
		return "", fmt.Errorf("invalid status %q: want open, closed or all", s)
	}
}

// Category is an EONET event category, e.g. {"wildfires", "Wildfires"}.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Source is an external reference for an event (InciWeb, CALFIRE, ...).
type Source struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url,omitempty"`
}

// Event is a single EONET natural event.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Link        string     `json:"link,omitempty"`
	Closed      *time.Time `json:"closed,omitempty"`
	Categories  []Category `json:"categories"`
	Sources     []Source   `json:"sources"`
	Geometries  []Geometry `json:"geometries"`
}

type eventFields Event

// UnmarshalJSON accepts both the "geometries" key used by cached snapshots
// and the "geometry" key used by the v3 list endpoint.
func (e *Event) UnmarshalJSON(b []byte) error {
	var w struct {
		eventFields
		Geometry []Geometry `json:"geometry"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Event(w.eventFields)
	if len(e.Geometries) == 0 && len(w.Geometry) > 0 {
		e.Geometries = w.Geometry
	}
	return nil
}

// IsOpen reports whether the event has no closing date.
func (e Event) IsOpen() bool { return e.Closed == nil }

// MissingGeometry reports whether the event has no observations yet.
func (e Event) MissingGeometry() bool { return len(e.Geometries) == 0 }

// Latest returns the most recent observation.
func (e Event) Latest() (Geometry, bool) {
	if len(e.Geometries) == 0 {
		return Geometry{}, false
	}
	return e.Geometries[len(e.Geometries)-1], true
}

// LatestDate is the date of the most recent observation, or the zero time.
func (e Event) LatestDate() time.Time {
	g, ok := e.Latest()
	if !ok {
		return time.Time{}
	}
	return g.Date
}

// CurrentPosition anchors the latest observation to a single map position.
func (e Event) CurrentPosition() (Position, bool) {
	g, ok := e.Latest()
	if !ok {
		return Position{}, false
	}
	return g.Anchor()
}

// PrimarySourceURL returns the first source link, if any.
func (e Event) PrimarySourceURL() string {
	for _, s := range e.Sources {
		if s.URL != "" {
			return s.URL
		}
	}
	return ""
}
