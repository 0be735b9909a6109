// Package geo provides the geodesic distance and geofence membership checks
// used to gate clock-in. Everything here is pure and side-effect free; input
// validation is the caller's responsibility.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// Distance computes the great-circle distance between two coordinates using
// the haversine formula, rounded to the nearest meter. It is symmetric and
// zero iff both points are identical.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusMeters * c)
}

// GeofenceResult reports a membership test together with the measured
// distance so callers can store or display it without recomputing.
type GeofenceResult struct {
	Within   bool
	Distance float64
}

// WithinGeofence reports whether the user's position falls inside the circular
// geofence around the site. The boundary itself counts as inside.
func WithinGeofence(userLat, userLng, siteLat, siteLng, radiusMeters float64) GeofenceResult {
	d := Distance(userLat, userLng, siteLat, siteLng)
	return GeofenceResult{
		Within:   d <= radiusMeters,
		Distance: d,
	}
}
