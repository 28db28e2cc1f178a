package domain

import "context"

// ListQuery parameterizes the event list request.
type ListQuery struct {
	Status Status
	Limit  int
}

// EventSource fetches wildfire events from EONET.
type EventSource interface {
	// ListEvents returns the event list. Events may come back without geometries.
	ListEvents(ctx context.Context, q ListQuery) ([]Event, error)
	// EventGeometries returns the observations for one event, normalized from
	// whichever detail shape the server sent. An unrecognized shape yields an
	// empty slice, not an error.
	EventGeometries(ctx context.Context, id string) ([]Geometry, error)
}
