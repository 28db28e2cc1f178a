// Package domain models natural-event data published by NASA's Earth
// Observatory Natural Event Tracker (EONET), restricted to wildfires.
//
// # Data Source
//
// Events come from the EONET v3 API at https://eonet.gsfc.nasa.gov/api/v3.
// The list endpoint (/events) returns one record per event with its
// categories, sources and a sequence of dated geometry observations. The
// list payload frequently omits geometries, so the loader backfills them
// from the per-event GeoJSON endpoint (/events/{id}/geojson).
//
// # EONET Conventions
//
// Coordinates:
//
//	Positions are [longitude, latitude] pairs in WGS-84. Points carry a single
//	position; polygons carry a sequence of rings, each a sequence of positions;
//	multipolygons carry a sequence of polygons.
//
// Dates:
//
//	Observation dates are ISO-8601 timestamps, e.g. "2024-08-01T12:00:00Z".
//	The last element of an event's geometry sequence is its most recent
//	observation.
//
// Status:
//
//	An event is open while its "closed" field is null and closed once EONET
//	records a closing date.
//
// Magnitude:
//
//	Some observations carry a magnitude, e.g. 1250 "acres" for fire extent.
//	Both fields are optional and are passed through unchanged.
//
// # Geometry Variants
//
// [Shape] is a closed set: [Point], [Polygon], [MultiPolygon] and
// [UnknownShape] for any geometry type this package does not understand.
// [Geometry.Anchor] is the single place where every variant is reduced to one
// representative map position.
package domain
