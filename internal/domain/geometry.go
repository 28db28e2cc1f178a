package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Kind names a GeoJSON geometry type.
type Kind string

const (
	KindPoint        Kind = "Point"
	KindPolygon      Kind = "Polygon"
	KindMultiPolygon Kind = "MultiPolygon"
)

// Position is a [longitude, latitude] pair. Shapes whose positions carry
// further ordinates (altitude) are kept as UnknownShape.
type Position struct {
	Lon float64
	Lat float64
}

// LatLng returns the pair in map-library order.
func (p Position) LatLng() [2]float64 { return [2]float64{p.Lat, p.Lon} }

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var xs []float64
	if err := json.Unmarshal(b, &xs); err != nil {
		return err
	}
	if len(xs) < 2 {
		return fmt.Errorf("position needs longitude and latitude, got %d values", len(xs))
	}
	p.Lon, p.Lat = xs[0], xs[1]
	return nil
}

// Shape is the coordinate payload of an observation. The set of
// implementations is closed to this package.
type Shape interface {
	Kind() Kind
	coordinates() (json.RawMessage, error)
}

// Point is a single position.
type Point struct {
	Position Position
}

// Polygon is a sequence of linear rings; the first ring is the outline.
type Polygon struct {
	Rings [][]Position
}

// MultiPolygon is a sequence of polygons.
type MultiPolygon struct {
	Polygons [][][]Position
}

// UnknownShape keeps geometry types (or malformed coordinates) verbatim so
// they survive a cache round trip.
type UnknownShape struct {
	Type string
	Raw  json.RawMessage
}

func (Point) Kind() Kind          { return KindPoint }
func (Polygon) Kind() Kind        { return KindPolygon }
func (MultiPolygon) Kind() Kind   { return KindMultiPolygon }
func (s UnknownShape) Kind() Kind { return Kind(s.Type) }

func (s Point) coordinates() (json.RawMessage, error)        { return json.Marshal(s.Position) }
func (s Polygon) coordinates() (json.RawMessage, error)      { return json.Marshal(s.Rings) }
func (s MultiPolygon) coordinates() (json.RawMessage, error) { return json.Marshal(s.Polygons) }
func (s UnknownShape) coordinates() (json.RawMessage, error) { return s.Raw, nil }

// DecodeShape builds a Shape from a GeoJSON type and its raw coordinates.
// Anything that is not plain [lon, lat] positions nested to the depth its
// type requires becomes an UnknownShape, so re-encoding loses nothing.
func DecodeShape(typ string, raw json.RawMessage) Shape {
	switch Kind(typ) {
	case KindPoint:
		var p Position
		if planar(raw, 0) && json.Unmarshal(raw, &p) == nil {
			return Point{Position: p}
		}
	case KindPolygon:
		var rings [][]Position
		if planar(raw, 2) && json.Unmarshal(raw, &rings) == nil {
			return Polygon{Rings: rings}
		}
	case KindMultiPolygon:
		var polys [][][]Position
		if planar(raw, 3) && json.Unmarshal(raw, &polys) == nil {
			return MultiPolygon{Polygons: polys}
		}
	}
	return UnknownShape{Type: typ, Raw: raw}
}

// planar reports whether raw is depth levels of arrays around positions of
// exactly two numbers.
func planar(raw json.RawMessage, depth int) bool {
	if depth == 0 {
		var xs []float64
		return json.Unmarshal(raw, &xs) == nil && len(xs) == 2
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return false
	}
	for _, item := range items {
		if !planar(item, depth-1) {
			return false
		}
	}
	return true
}

// Geometry is one dated observation of an event.
type Geometry struct {
	Date           time.Time
	Shape          Shape
	MagnitudeValue *float64
	MagnitudeUnit  *string

	// dateText is the date as received when FormatDate would not reproduce it.
	dateText string
}

type geometryJSON struct {
	MagnitudeValue *float64        `json:"magnitudeValue,omitempty"`
	MagnitudeUnit  *string         `json:"magnitudeUnit,omitempty"`
	Date           string          `json:"date,omitempty"`
	Type           string          `json:"type,omitempty"`
	Coordinates    json.RawMessage `json:"coordinates,omitempty"`
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	w := geometryJSON{
		MagnitudeValue: g.MagnitudeValue,
		MagnitudeUnit:  g.MagnitudeUnit,
		Date:           g.DateText(),
	}
	if g.Shape != nil {
		raw, err := g.Shape.coordinates()
		if err != nil {
			return nil, fmt.Errorf("encode %s coordinates: %w", g.Shape.Kind(), err)
		}
		w.Type = string(g.Shape.Kind())
		w.Coordinates = raw
	}
	return json.Marshal(w)
}

func (g *Geometry) UnmarshalJSON(b []byte) error {
	var w geometryJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*g = Geometry{
		Shape:          DecodeShape(w.Type, w.Coordinates),
		MagnitudeValue: w.MagnitudeValue,
		MagnitudeUnit:  w.MagnitudeUnit,
	}
	g.SetDateText(w.Date)
	return nil
}

// SetDateText sets Date from an EONET date string and remembers the string
// itself when it is not in canonical form, so encoding writes it back as is.
func (g *Geometry) SetDateText(s string) {
	g.Date = ParseDate(s)
	g.dateText = ""
	if FormatDate(g.Date) != s {
		g.dateText = s
	}
}

// DateText is the date as it will be encoded: the received string while
// Date still matches it, otherwise FormatDate(Date).
func (g Geometry) DateText() string {
	if g.dateText != "" && ParseDate(g.dateText).Equal(g.Date) {
		return g.dateText
	}
	return FormatDate(g.Date)
}

// ParseDate parses an EONET timestamp, RFC 3339 or a bare YYYY-MM-DD day.
// Unparseable input yields the zero time.
func ParseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := ParseDay(s); err == nil {
		return t
	}
	return time.Time{}
}

// FormatDate is the inverse of ParseDate; the zero time formats as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// Anchor reduces the observation to one map position:
//   - Point: its position
//   - Polygon: the mean of the first ring's vertices
//   - MultiPolygon: the mean of the first polygon's first ring
//   - UnknownShape: the same rules applied to its raw coordinates by type,
//     ignoring extra ordinates; other types anchor only if the payload is
//     itself a position
//
// It reports false when no position can be derived.
func (g Geometry) Anchor() (Position, bool) {
	switch s := g.Shape.(type) {
	case Point:
		return s.Position, true
	case Polygon:
		if len(s.Rings) > 0 {
			return centroid(s.Rings[0])
		}
	case MultiPolygon:
		if len(s.Polygons) > 0 && len(s.Polygons[0]) > 0 {
			return centroid(s.Polygons[0][0])
		}
	case UnknownShape:
		if known := s.lenient(); known != nil {
			return Geometry{Shape: known}.Anchor()
		}
		var p Position
		if err := json.Unmarshal(s.Raw, &p); err == nil {
			return p, true
		}
	}
	return Position{}, false
}

// lenient decodes a Point, Polygon or MultiPolygon whose positions carry
// extra ordinates, keeping only longitude and latitude. It returns nil for
// other types or undecodable coordinates.
func (s UnknownShape) lenient() Shape {
	switch Kind(s.Type) {
	case KindPoint:
		var p Position
		if json.Unmarshal(s.Raw, &p) == nil {
			return Point{Position: p}
		}
	case KindPolygon:
		var rings [][]Position
		if json.Unmarshal(s.Raw, &rings) == nil {
			return Polygon{Rings: rings}
		}
	case KindMultiPolygon:
		var polys [][][]Position
		if json.Unmarshal(s.Raw, &polys) == nil {
			return MultiPolygon{Polygons: polys}
		}
	}
	return nil
}

// Outline returns the rings to draw for area shapes: all rings of a polygon,
// or the rings of the first polygon of a multipolygon.
func (g Geometry) Outline() [][]Position {
	if u, ok := g.Shape.(UnknownShape); ok {
		if known := u.lenient(); known != nil {
			return Geometry{Shape: known}.Outline()
		}
	}
	switch s := g.Shape.(type) {
	case Polygon:
		return s.Rings
	case MultiPolygon:
		if len(s.Polygons) > 0 {
			return s.Polygons[0]
		}
	}
	return nil
}

func centroid(ring []Position) (Position, bool) {
	if len(ring) == 0 {
		return Position{}, false
	}
	var lon, lat float64
	for _, p := range ring {
		lon += p.Lon
		lat += p.Lat
	}
	n := float64(len(ring))
	c := Position{Lon: lon / n, Lat: lat / n}
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) {
		return Position{}, false
	}
	return c, true
}
