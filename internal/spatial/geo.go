// Package spatial computes corridor geometry: buffer polygons around a
// route, incident filtering by buffer membership, distance-to-route, risk
// scoring, and interpolation along the route.
//
// All math is spherical (great-circle) over WGS-84 decimal degrees with a
// mean earth radius. Routes here span hundreds of kilometers at most, so
// ellipsoidal corrections are far below the precision anything downstream
// needs.
package spatial

import "math"

// earthRadiusKm is the mean earth radius.
const earthRadiusKm = 6371.0

type point struct {
	lat, lon float64 // degrees
}

// haversineKm returns the great-circle distance between two points.
func haversineKm(a, b point) float64 {
	lat1 := a.lat * math.Pi / 180
	lat2 := b.lat * math.Pi / 180
	dLat := (b.lat - a.lat) * math.Pi / 180
	dLon := (b.lon - a.lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// initialBearing returns the forward azimuth from a to b in degrees [0,360).
func initialBearing(a, b point) float64 {
	lat1 := a.lat * math.Pi / 180
	lat2 := b.lat * math.Pi / 180
	dLon := (b.lon - a.lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// destination returns the point reached from start after traveling distKm
// along the great circle at the given initial bearing.
func destination(start point, bearingDeg, distKm float64) point {
	lat1 := start.lat * math.Pi / 180
	lon1 := start.lon * math.Pi / 180
	brng := bearingDeg * math.Pi / 180
	d := distKm / earthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) +
		math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))

	return point{
		lat: lat2 * 180 / math.Pi,
		lon: math.Mod(lon2*180/math.Pi+540, 360) - 180,
	}
}

// crossTrackKm returns the shortest distance from p to the great-circle
// segment a-b, clamping to the segment endpoints when the perpendicular
// foot falls outside the segment.
func crossTrackKm(p, a, b point) float64 {
	d13 := haversineKm(a, p) / earthRadiusKm // angular distance a -> p
	if d13 == 0 {
		return 0
	}
	b13 := initialBearing(a, p) * math.Pi / 180
	b12 := initialBearing(a, b) * math.Pi / 180

	// Behind the start of the segment.
	if math.Cos(b13-b12) < 0 {
		return haversineKm(a, p)
	}

	xt := math.Asin(math.Sin(d13) * math.Sin(b13-b12))
	at := math.Acos(clamp(math.Cos(d13)/math.Cos(xt), -1, 1))

	// Past the end of the segment.
	if at > haversineKm(a, b)/earthRadiusKm {
		return haversineKm(b, p)
	}
	return math.Abs(xt) * earthRadiusKm
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// normalizeAngle maps an angle difference into (-180, 180].
func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg <= 0 {
		deg += 360
	}
	return deg - 180
}
