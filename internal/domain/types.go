package domain

import (
	"context"
	"time"
)

// Severity is an incident severity level, ordered from least to most severe.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns a comparable ordering for severities. Unknown values rank
// below "low" so they never dominate a recomputed operation severity.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Category is an incident category.
type Category string

const (
	CategoryBombardment   Category = "bombardment"
	CategoryLooting       Category = "looting"
	CategoryAccessDenial  Category = "access-denial"
	CategoryControlChange Category = "control-change"
	CategoryHealth        Category = "health"
	CategoryDisplacement  Category = "displacement"
	CategoryFlood         Category = "flood"
	CategoryEarthquake    Category = "earthquake"
)

// DraftStatus is the review state of a draft incident.
type DraftStatus string

const (
	DraftPending   DraftStatus = "PENDING"
	DraftConfirmed DraftStatus = "CONFIRMED"
	DraftRejected  DraftStatus = "REJECTED"
)

// IncidentSource records how an incident entered the system.
type IncidentSource string

const (
	SourceManual      IncidentSource = "MANUAL"
	SourceAIConfirmed IncidentSource = "AI_CONFIRMED"
)

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is a geographic rectangle. South < North, West < East for any
// region this system operates in; antimeridian-crossing regions are not
// supported.
type BoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lon >= b.West && c.Lon <= b.East
}

// Expand returns the box grown by margin degrees in every direction.
func (b BoundingBox) Expand(margin float64) BoundingBox {
	return BoundingBox{
		South: b.South - margin,
		West:  b.West - margin,
		North: b.North + margin,
		East:  b.East + margin,
	}
}

// Region describes an operation's area of interest.
type Region struct {
	Center      Coordinate   `json:"center"`
	Bounds      *BoundingBox `json:"bounds,omitempty"`
	DefaultZoom int          `json:"default_zoom,omitempty"`
}

// Operation is a named crisis context owning corridors, briefs, drafts, and
// incidents.
type Operation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Severity  Severity  `json:"severity"`
	Status    string    `json:"status"`
	Region    Region    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Waypoint is a single named point on a corridor route. Order within the
// corridor is significant; it defines route direction.
type Waypoint struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Kind        string  `json:"kind,omitempty"` // "city", "base", "wp", "rz"
	Description string  `json:"description,omitempty"`
}

// Coordinate returns the waypoint's position.
func (w Waypoint) Coordinate() Coordinate {
	return Coordinate{Lat: w.Lat, Lon: w.Lon}
}

// Corridor is an ordered route through an operation's region.
type Corridor struct {
	ID          string     `json:"id"`
	OperationID string     `json:"operation_id"`
	Name        string     `json:"name"`
	Waypoints   []Waypoint `json:"waypoints"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Brief is a timestamped free-text situational report. Briefs are archived,
// never hard-deleted, while drafts still reference them.
type Brief struct {
	ID          string    `json:"id"`
	OperationID string    `json:"operation_id"`
	Text        string    `json:"text"`
	Source      string    `json:"source,omitempty"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
}

// Draft is a candidate incident awaiting human review. Status transitions
// are one-way: PENDING to CONFIRMED or PENDING to REJECTED.
type Draft struct {
	ID          string      `json:"id"`
	OperationID string      `json:"operation_id"`
	BriefID     string      `json:"brief_id"`

	SuggestedTitle    string      `json:"suggested_title"`
	SuggestedDesc     string      `json:"suggested_desc"`
	SuggestedCategory Category    `json:"suggested_category"`
	SuggestedSeverity Severity    `json:"suggested_severity"`
	SuggestedDate     string      `json:"suggested_date,omitempty"` // ISO date, empty when absent
	SuggestedCoord    *Coordinate `json:"suggested_coord,omitempty"`

	LocationName    string `json:"location_name,omitempty"` // as written in the brief
	UncertaintyFlag bool   `json:"uncertainty_flag"`
	UncertaintyNote string `json:"uncertainty_note,omitempty"`

	Status              DraftStatus `json:"status"`
	ConfirmedIncidentID string      `json:"confirmed_incident_id,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
}

// Incident is an authoritative, mappable record. The coordinate is fixed at
// creation; other fields may be edited afterwards.
type Incident struct {
	ID           string         `json:"id"`
	OperationID  string         `json:"operation_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     Category       `json:"category"`
	Severity     Severity       `json:"severity"`
	Date         string         `json:"date"` // ISO date
	Lat          float64        `json:"lat"`
	Lon          float64        `json:"lon"`
	Actor        string         `json:"actor,omitempty"`
	Organization string         `json:"organization,omitempty"`
	Source       IncidentSource `json:"source"`
	Verified     bool           `json:"verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Coordinate returns the incident's position.
func (i Incident) Coordinate() Coordinate {
	return Coordinate{Lat: i.Lat, Lon: i.Lon}
}

// RiskZone is a circular hazard area rendered around part of a region.
type RiskZone struct {
	ID          string   `json:"id"`
	OperationID string   `json:"operation_id"`
	Name        string   `json:"name"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	RadiusM     float64  `json:"radius_m"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}

// Geocoder looks up coordinate candidates for a free-text place name,
// constrained by a bias box. Implementations return at most three
// candidates in provider-preference order.
type Geocoder interface {
	Search(ctx context.Context, query string, bias BoundingBox) ([]Coordinate, error)
}
