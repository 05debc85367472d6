// Package export renders read-only projections of operation data: a
// GeoJSON FeatureCollection for mapping tools, CSV for spreadsheets, and
// a Markdown situation report.
package export

import (
	"github.com/levonter/corridor/internal/domain"
)

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds a Point ([lon, lat]) or LineString ([][lon, lat]).
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func pointGeom(lat, lon float64) Geometry {
	return Geometry{Type: "Point", Coordinates: []float64{lon, lat}}
}

// GeoJSON projects an operation's corridors, incidents, pending drafts,
// and risk zones into one FeatureCollection. Drafts without a suggested
// coordinate are skipped; they have no geometry to export.
func GeoJSON(op domain.Operation, corridors []domain.Corridor, incidents []domain.Incident, drafts []domain.Draft, zones []domain.RiskZone) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}

	for _, c := range corridors {
		coords := make([][]float64, 0, len(c.Waypoints))
		for _, w := range c.Waypoints {
			coords = append(coords, []float64{w.Lon, w.Lat})
		}
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "LineString", Coordinates: coords},
			Properties: map[string]any{
				"kind":         "corridor",
				"id":           c.ID,
				"operation_id": op.ID,
				"name":         c.Name,
			},
		})
	}

	for _, inc := range incidents {
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: pointGeom(inc.Lat, inc.Lon),
			Properties: map[string]any{
				"kind":         "incident",
				"id":           inc.ID,
				"operation_id": op.ID,
				"title":        inc.Title,
				"description":  inc.Description,
				"category":     string(inc.Category),
				"severity":     string(inc.Severity),
				"date":         inc.Date,
				"actor":        inc.Actor,
				"organization": inc.Organization,
				"source":       string(inc.Source),
				"verified":     inc.Verified,
			},
		})
	}

	for _, d := range drafts {
		if d.SuggestedCoord == nil {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: pointGeom(d.SuggestedCoord.Lat, d.SuggestedCoord.Lon),
			Properties: map[string]any{
				"kind":         "draft",
				"id":           d.ID,
				"operation_id": op.ID,
				"title":        d.SuggestedTitle,
				"category":     string(d.SuggestedCategory),
				"severity":     string(d.SuggestedSeverity),
				"status":       string(d.Status),
				"uncertain":    d.UncertaintyFlag,
			},
		})
	}

	for _, z := range zones {
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: pointGeom(z.Lat, z.Lon),
			Properties: map[string]any{
				"kind":         "risk_zone",
				"id":           z.ID,
				"operation_id": op.ID,
				"name":         z.Name,
				"severity":     string(z.Severity),
				"radius_m":     z.RadiusM,
			},
		})
	}

	return fc
}
