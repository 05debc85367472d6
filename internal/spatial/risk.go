package spatial

import (
	"math"
	"sort"

	"github.com/levonter/corridor/internal/domain"
)

// SeverityWeights maps a severity to its contribution to the risk score.
// The policy intent: a handful of critical incidents should dominate the
// score without unbounded escalation, so contributions are additive and the
// total is clamped to 1.
type SeverityWeights map[domain.Severity]float64

// DefaultWeights mirrors the scoring policy used operationally. Unknown
// severities contribute UnknownWeight.
var DefaultWeights = SeverityWeights{
	domain.SeverityCritical: 0.25,
	domain.SeverityHigh:     0.15,
	domain.SeverityMedium:   0.08,
	domain.SeverityLow:      0.03,
}

// UnknownWeight applies to incidents whose severity is not in the table.
const UnknownWeight = 0.05

// RatedIncident is an incident annotated with its distance to a route.
type RatedIncident struct {
	domain.Incident
	DistanceKm float64 `json:"distance_km"`
}

// IncidentsInBuffer returns the incidents inside the radiusKm capsule
// around the route, each annotated with its distance to the route and
// sorted ascending by that distance. An empty slice (never nil) is
// returned for degenerate routes.
func IncidentsInBuffer(incidents []domain.Incident, waypoints []domain.Waypoint, radiusKm float64) []RatedIncident {
	out := []RatedIncident{}
	ring := Buffer(waypoints, radiusKm)
	if ring == nil {
		return out
	}

	for _, inc := range incidents {
		if !Contains(ring, inc.Coordinate()) {
			continue
		}
		dist := DistanceToRouteKm(waypoints, inc.Coordinate())
		out = append(out, RatedIncident{
			Incident:   inc,
			DistanceKm: round2(dist),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

// RiskScore aggregates severity weights over incidents already filtered to
// a buffer. The result is in [0,1], rounded to two decimals; an empty list
// scores 0.
func RiskScore(incidents []RatedIncident, weights SeverityWeights) float64 {
	if len(incidents) == 0 {
		return 0
	}
	if weights == nil {
		weights = DefaultWeights
	}
	var raw float64
	for _, inc := range incidents {
		w, ok := weights[inc.Severity]
		if !ok {
			w = UnknownWeight
		}
		raw += w
	}
	return math.Min(1.0, round2(raw))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
