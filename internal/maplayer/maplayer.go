// Package maplayer emits geometry and styling records for a map-rendering
// client. Nothing here draws; the payloads carry everything a renderer
// needs to place markers, polylines, and circles.
package maplayer

import (
	"fmt"
	"strings"

	"github.com/levonter/corridor/internal/domain"
)

// Icons maps incident categories to their marker glyphs.
var Icons = map[domain.Category]string{
	domain.CategoryBombardment:   "💥",
	domain.CategoryLooting:       "🔥",
	domain.CategoryAccessDenial:  "🚫",
	domain.CategoryControlChange: "⚑",
	domain.CategoryHealth:        "🦠",
	domain.CategoryDisplacement:  "👥",
	domain.CategoryFlood:         "🌊",
	domain.CategoryEarthquake:    "🏚️",
}

// DefaultIcon is used for categories without a glyph.
const DefaultIcon = "⚠️"

// SeverityStyle carries the marker color pair for a severity level.
type SeverityStyle struct {
	Color      string `json:"color"`
	Background string `json:"background"`
}

// SeverityStyles is the operational palette. Unknown severities fall back
// to medium.
var SeverityStyles = map[domain.Severity]SeverityStyle{
	domain.SeverityCritical: {Color: "#C73E1D", Background: "#C73E1D22"},
	domain.SeverityHigh:     {Color: "#D4820C", Background: "#D4820C1A"},
	domain.SeverityMedium:   {Color: "#A69220", Background: "#A692201A"},
	domain.SeverityLow:      {Color: "#3B7A57", Background: "#3B7A571A"},
}

// StyleFor returns the palette entry for a severity, defaulting to medium.
func StyleFor(s domain.Severity) SeverityStyle {
	if st, ok := SeverityStyles[s]; ok {
		return st
	}
	return SeverityStyles[domain.SeverityMedium]
}

// Marker is a styled point for an incident or draft.
type Marker struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`
	Radius      float64 `json:"radius"`
	Popup       string  `json:"popup"`
	Halo        bool    `json:"halo"`  // critical incidents get a wide translucent ring
	Draft       bool    `json:"draft"` // unreviewed suggestions render muted
}

// LineStyle describes a polyline's rendering.
type LineStyle struct {
	Color     string  `json:"color"`
	Weight    float64 `json:"weight"`
	Opacity   float64 `json:"opacity"`
	DashArray string  `json:"dash_array,omitempty"`
}

// CorridorLines is a corridor's polyline pair: the visible dashed route
// and a wide translucent emphasis band beneath it.
type CorridorLines struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Path     [][2]float64 `json:"path"` // [lat, lon]
	Line     LineStyle    `json:"line"`
	Emphasis LineStyle    `json:"emphasis"`
}

// ZoneCircle is a styled risk-zone circle.
type ZoneCircle struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	RadiusM     float64 `json:"radius_m"`
	Color       string  `json:"color"`
	FillOpacity float64 `json:"fill_opacity"`
	DashArray   string  `json:"dash_array"`
	Popup       string  `json:"popup"`
}

// IncidentMarkers builds styled points for incidents. Critical incidents
// carry the halo flag so renderers can add an attention ring.
func IncidentMarkers(incidents []domain.Incident) []Marker {
	out := make([]Marker, 0, len(incidents))
	for _, inc := range incidents {
		style := StyleFor(inc.Severity)
		radius := 8.0
		if inc.Severity == domain.SeverityCritical {
			radius = 10.0
		}
		out = append(out, Marker{
			ID:          inc.ID,
			Lat:         inc.Lat,
			Lon:         inc.Lon,
			Icon:        iconFor(inc.Category),
			Color:       "#FFF",
			FillColor:   style.Color,
			FillOpacity: 0.85,
			Radius:      radius,
			Popup:       incidentPopup(inc),
			Halo:        inc.Severity == domain.SeverityCritical,
		})
	}
	return out
}

// DraftMarkers builds muted points for pending drafts that carry a
// suggested coordinate. Uncertain or coordinate-less drafts produce no
// marker.
func DraftMarkers(drafts []domain.Draft) []Marker {
	var out []Marker
	for _, d := range drafts {
		if d.Status != domain.DraftPending || d.SuggestedCoord == nil {
			continue
		}
		style := StyleFor(d.SuggestedSeverity)
		out = append(out, Marker{
			ID:          d.ID,
			Lat:         d.SuggestedCoord.Lat,
			Lon:         d.SuggestedCoord.Lon,
			Icon:        iconFor(d.SuggestedCategory),
			Color:       style.Color,
			FillColor:   style.Color,
			FillOpacity: 0.4,
			Radius:      8,
			Popup:       fmt.Sprintf("%s %s (draft, %s)", iconFor(d.SuggestedCategory), d.SuggestedTitle, strings.ToUpper(string(d.SuggestedSeverity))),
			Draft:       true,
		})
	}
	return out
}

// CorridorPolylines builds the route polyline pair for a corridor.
func CorridorPolylines(c domain.Corridor) CorridorLines {
	path := make([][2]float64, 0, len(c.Waypoints))
	for _, w := range c.Waypoints {
		path = append(path, [2]float64{w.Lat, w.Lon})
	}
	return CorridorLines{
		ID:   c.ID,
		Name: c.Name,
		Path: path,
		Line: LineStyle{
			Color: "#8B4513", Weight: 3, Opacity: 0.7, DashArray: "10 6",
		},
		Emphasis: LineStyle{
			Color: "#8B4513", Weight: 12, Opacity: 0.08,
		},
	}
}

// RiskZoneCircles builds styled circles for an operation's risk zones.
func RiskZoneCircles(zones []domain.RiskZone) []ZoneCircle {
	out := make([]ZoneCircle, 0, len(zones))
	for _, z := range zones {
		style := StyleFor(z.Severity)
		out = append(out, ZoneCircle{
			ID:          z.ID,
			Name:        z.Name,
			Lat:         z.Lat,
			Lon:         z.Lon,
			RadiusM:     z.RadiusM,
			Color:       style.Color,
			FillOpacity: 0.08,
			DashArray:   "6 4",
			Popup:       fmt.Sprintf("%s [%s] %s", z.Name, strings.ToUpper(string(z.Severity)), z.Description),
		})
	}
	return out
}

func iconFor(cat domain.Category) string {
	if icon, ok := Icons[cat]; ok {
		return icon
	}
	return DefaultIcon
}

func incidentPopup(inc domain.Incident) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s [%s] %s", iconFor(inc.Category), inc.Title, strings.ToUpper(string(inc.Severity)), inc.Date)
	if inc.Description != "" {
		fmt.Fprintf(&b, "\n%s", inc.Description)
	}
	if inc.Actor != "" || inc.Organization != "" {
		fmt.Fprintf(&b, "\n⚔️ %s 🏥 %s", inc.Actor, inc.Organization)
	}
	return b.String()
}
