// README: Great-circle fallback estimator used when the routing provider is unavailable.
package geo

import (
	"math"

	"haul/internal/types"
)

const (
	earthRadiusMeters = 6371000.0
	// secondsPerKm is the nominal urban pace of the fallback (30 km/h).
	secondsPerKm = 120.0
)

// Estimation is a straight-line distance/duration guess between two points.
type Estimation struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        string
}

// DistanceMeters returns the great-circle distance between a and b.
func DistanceMeters(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// clamp: rounding can push h marginally above 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Estimate never fails and performs no I/O.
func Estimate(a, b types.Point) Estimation {
	d := DistanceMeters(a, b)
	// a and b are validated upstream, so precision 5 always encodes
	geometry, _ := Encode([]types.Point{a, b}, DefaultPrecision)
	return Estimation{
		DistanceMeters:  d,
		DurationSeconds: d / 1000 * secondsPerKm,
		Geometry:        geometry,
	}
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
