package spatial

import (
	"math"

	"github.com/levonter/corridor/internal/domain"
)

// arcStepDeg is the angular resolution of buffer caps and joins. 15 degrees
// keeps end caps at 12 vertices, plenty for membership tests at 10km radii.
const arcStepDeg = 15.0

// miterLimitDeg caps how sharp a concave turn may be before the join point
// is dropped in favor of a straight bevel. The join distance grows as
// 1/cos(sweep/2) and diverges toward a full reversal.
const miterLimitDeg = 150.0

// Buffer returns a closed polygon ring containing every point within
// radiusKm of the polyline through the waypoints (a capsule). It returns
// nil for fewer than two waypoints or a non-positive radius.
func Buffer(waypoints []domain.Waypoint, radiusKm float64) []domain.Coordinate {
	pts := dedupePoints(waypoints)
	if len(pts) < 2 || radiusKm <= 0 {
		return nil
	}

	n := len(pts)
	bearings := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		bearings[i] = initialBearing(pts[i], pts[i+1])
	}

	var ring []point

	// Left side, walking forward. Offsets sit 90 degrees counterclockwise
	// of the travel bearing; join bridges the bearing change at each
	// interior waypoint.
	ring = append(ring, destination(pts[0], bearings[0]-90, radiusKm))
	for i := 1; i < n-1; i++ {
		sweep := normalizeAngle(bearings[i] - bearings[i-1])
		ring = append(ring, join(pts[i], bearings[i-1]-90, sweep, radiusKm)...)
	}
	ring = append(ring, destination(pts[n-1], bearings[n-2]-90, radiusKm))

	// End cap: half circle around the last waypoint, sweeping through the
	// forward bearing.
	last := bearings[n-2]
	ring = append(ring, arc(pts[n-1], last-90, 180, radiusKm)...)
	ring = append(ring, destination(pts[n-1], last+90, radiusKm))

	// Right side, walking backward.
	for i := n - 2; i >= 1; i-- {
		sweep := normalizeAngle(bearings[i-1] - bearings[i])
		ring = append(ring, join(pts[i], bearings[i]+90, sweep, radiusKm)...)
	}
	ring = append(ring, destination(pts[0], bearings[0]+90, radiusKm))

	// Start cap, closing the ring back to the first left-side point.
	first := bearings[0]
	ring = append(ring, arc(pts[0], first+90, 180, radiusKm)...)
	ring = append(ring, ring[0])

	out := make([]domain.Coordinate, len(ring))
	for i, p := range ring {
		out[i] = domain.Coordinate{Lat: p.lat, Lon: p.lon}
	}
	return out
}

// join emits the ring vertices for an interior waypoint. The walk arrives
// at offset bearing offsetIn and leaves at offsetIn+sweep. A positive sweep
// means the walk is on the outside of the turn, where the perpendicular
// feet leave a gap that a round arc fills. A negative sweep means the walk
// is on the inside, where the feet fall within the capsule and the two
// offset lines meet at a single point beyond them; emitting the feet there
// would fold the ring across itself and even-odd containment would exclude
// points that belong to the buffer.
func join(center point, offsetIn, sweep, radiusKm float64) []point {
	switch {
	case sweep > 0:
		out := []point{destination(center, offsetIn, radiusKm)}
		out = append(out, arc(center, offsetIn, sweep, radiusKm)...)
		return append(out, destination(center, offsetIn+sweep, radiusKm))
	case sweep < -miterLimitDeg:
		// Near-reversal: the meeting point diverges, bevel instead.
		return []point{
			destination(center, offsetIn, radiusKm),
			destination(center, offsetIn+sweep, radiusKm),
		}
	case sweep < 0:
		dist := radiusKm / math.Cos(math.Abs(sweep)/2*math.Pi/180)
		return []point{destination(center, offsetIn+sweep/2, dist)}
	default:
		return []point{destination(center, offsetIn, radiusKm)}
	}
}

// arc generates intermediate points around center from startBearing through
// sweep degrees, exclusive of both endpoints.
func arc(center point, startBearing, sweep, radiusKm float64) []point {
	steps := int(math.Abs(sweep) / arcStepDeg)
	var out []point
	for s := 1; s < steps+1; s++ {
		b := startBearing + sweep*float64(s)/float64(steps+1)
		out = append(out, destination(center, b, radiusKm))
	}
	return out
}

// dedupePoints drops consecutive duplicate waypoints, which would produce
// zero-length segments with undefined bearings.
func dedupePoints(waypoints []domain.Waypoint) []point {
	var pts []point
	for _, w := range waypoints {
		p := point{lat: w.Lat, lon: w.Lon}
		if len(pts) > 0 && pts[len(pts)-1] == p {
			continue
		}
		pts = append(pts, p)
	}
	return pts
}

// Contains reports whether c lies inside the polygon ring using even-odd
// ray casting. The ring is treated as planar, which holds for the regional
// scales corridors operate at.
func Contains(ring []domain.Coordinate, c domain.Coordinate) bool {
	if len(ring) < 4 {
		return false
	}
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		pi, pj := ring[i], ring[j]
		if (pi.Lat > c.Lat) != (pj.Lat > c.Lat) &&
			c.Lon < (pj.Lon-pi.Lon)*(c.Lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lon {
			inside = !inside
		}
		j = i
	}
	return inside
}

// DistanceToRouteKm returns the shortest distance from c to the polyline
// through the waypoints. It returns 0 for fewer than two waypoints.
func DistanceToRouteKm(waypoints []domain.Waypoint, c domain.Coordinate) float64 {
	pts := dedupePoints(waypoints)
	if len(pts) < 2 {
		return 0
	}
	p := point{lat: c.Lat, lon: c.Lon}
	best := crossTrackKm(p, pts[0], pts[1])
	for i := 1; i < len(pts)-1; i++ {
		if d := crossTrackKm(p, pts[i], pts[i+1]); d < best {
			best = d
		}
	}
	return best
}

// RouteLengthKm returns the summed great-circle length of the route, or 0
// for fewer than two waypoints.
func RouteLengthKm(waypoints []domain.Waypoint) float64 {
	pts := dedupePoints(waypoints)
	if len(pts) < 2 {
		return 0
	}
	var total float64
	for i := 0; i < len(pts)-1; i++ {
		total += haversineKm(pts[i], pts[i+1])
	}
	return total
}

// PointAtFraction returns the coordinate at fraction f (clamped to [0,1])
// of the route's length, or nil for fewer than two waypoints.
func PointAtFraction(waypoints []domain.Waypoint, f float64) *domain.Coordinate {
	pts := dedupePoints(waypoints)
	if len(pts) < 2 {
		return nil
	}
	f = clamp(f, 0, 1)
	target := RouteLengthKm(waypoints) * f

	var traveled float64
	for i := 0; i < len(pts)-1; i++ {
		seg := haversineKm(pts[i], pts[i+1])
		if traveled+seg >= target {
			remain := target - traveled
			p := destination(pts[i], initialBearing(pts[i], pts[i+1]), remain)
			return &domain.Coordinate{Lat: p.lat, Lon: p.lon}
		}
		traveled += seg
	}
	end := pts[len(pts)-1]
	return &domain.Coordinate{Lat: end.lat, Lon: end.lon}
}
