package geo

import "math"

// EarthRadiusMeters is the mean earth radius used by Distance.
const EarthRadiusMeters = 6371e3

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance in meters between a and b
// (haversine, degrees in). The result is not rounded.
func Distance(a, b Point) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// rounding can push h just outside [0, 1] for near-antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Valid reports whether p is finite and inside the WGS84 lat/lng ranges.
func Valid(p Point) bool {
	for _, v := range []float64{p.Latitude, p.Longitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}
