package httpadapter

import (
	"github.com/couchcryptid/wildfire-tracker/internal/domain"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON places each event at the anchor of its latest observation.
// Events with no usable position are left out.
func toGeoJSON(events []domain.Event) FeatureCollection {
	features := make([]Feature, 0, len(events))

	for _, e := range events {
		latest, ok := e.Latest()
		if !ok {
			continue
		}
		pos, ok := latest.Anchor()
		if !ok {
			continue
		}

		props := map[string]any{
			"id":            e.ID,
			"title":         e.Title,
			"status":        statusOf(e),
			"date":          latest.DateText(),
			"geometry_type": string(latest.Shape.Kind()),
			"observations":  len(e.Geometries),
		}
		if e.Closed != nil {
			props["closed"] = domain.FormatDate(*e.Closed)
		}
		if url := e.PrimarySourceURL(); url != "" {
			props["source_url"] = url
		}
		if latest.MagnitudeValue != nil {
			props["magnitude_value"] = *latest.MagnitudeValue
		}
		if latest.MagnitudeUnit != nil {
			props["magnitude_unit"] = *latest.MagnitudeUnit
		}

		features = append(features, Feature{
			Type: "Feature",
			ID:   e.ID,
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{pos.Lon, pos.Lat},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func statusOf(e domain.Event) domain.Status {
	if e.IsOpen() {
		return domain.StatusOpen
	}
	return domain.StatusClosed
}
