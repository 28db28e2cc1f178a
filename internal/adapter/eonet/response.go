package eonet

import (
	"encoding/json"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
)

// EONET API response types.

type listResponse struct {
	Title  string         `json:"title"`
	Events []domain.Event `json:"events"`
}

// detailResponse covers the three shapes the detail endpoint is known to
// return: a GeoJSON FeatureCollection, an event record with "geometries",
// or a bare object with a single "geometry". The v3 event record spells its
// observation list "geometry", so that key may also hold an array.
type detailResponse struct {
	Features   []feature         `json:"features"`
	Geometries []domain.Geometry `json:"geometries"`
	Geometry   json.RawMessage   `json:"geometry"`
}

type feature struct {
	Geometry   featureGeometry   `json:"geometry"`
	Properties featureProperties `json:"properties"`
}

type featureGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type featureProperties struct {
	ID             string   `json:"id"`
	Date           string   `json:"date"`
	MagnitudeValue *float64 `json:"magnitudeValue"`
	MagnitudeUnit  *string  `json:"magnitudeUnit"`
}

func (f featureGeometry) empty() bool {
	return f.Type == "" && (len(f.Coordinates) == 0 || string(f.Coordinates) == "null")
}

// normalize flattens whichever shape arrived into an ordered geometry list.
// Unrecognized shapes yield an empty, non-nil slice.
func (d detailResponse) normalize() []domain.Geometry {
	switch {
	case d.Features != nil:
		out := make([]domain.Geometry, 0, len(d.Features))
		for _, f := range d.Features {
			if f.Geometry.empty() {
				continue
			}
			g := domain.Geometry{
				Shape:          domain.DecodeShape(f.Geometry.Type, f.Geometry.Coordinates),
				MagnitudeValue: f.Properties.MagnitudeValue,
				MagnitudeUnit:  f.Properties.MagnitudeUnit,
			}
			g.SetDateText(f.Properties.Date)
			out = append(out, g)
		}
		return out
	case d.Geometries != nil:
		return d.Geometries
	default:
		return singleOrList(d.Geometry)
	}
}

func singleOrList(raw json.RawMessage) []domain.Geometry {
	var list []domain.Geometry
	if err := json.Unmarshal(raw, &list); err == nil && list != nil {
		return list
	}
	var one map[string]json.RawMessage
	if err := json.Unmarshal(raw, &one); err != nil || one == nil {
		return []domain.Geometry{}
	}
	var g domain.Geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return []domain.Geometry{}
	}
	return []domain.Geometry{g}
}
