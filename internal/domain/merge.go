package domain

// PartitionMissing splits events into those without observations and those
// with at least one, preserving order within each half.
func PartitionMissing(events []Event) (missing, present []Event) {
	for _, e := range events {
		if e.MissingGeometry() {
			missing = append(missing, e)
		} else {
			present = append(present, e)
		}
	}
	return missing, present
}

// MergeGeometries returns a copy of events in which every event that has no
// observations and has an entry in backfill takes the backfilled geometries.
// Events that already have observations are never overwritten. Neither
// argument is modified.
func MergeGeometries(events []Event, backfill map[string][]Geometry) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		if geoms, ok := backfill[e.ID]; ok && e.MissingGeometry() {
			e.Geometries = geoms
		}
		out[i] = e
	}
	return out
}
