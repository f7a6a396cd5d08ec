// README: Route result and resolve options.
package routing

import "time"

type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

const (
	DefaultMaxWaypoints    = 25
	DefaultProviderTimeout = 5 * time.Second
)

// Route is immutable once built. Geometry is an encoded polyline and may be empty.
type Route struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Geometry        string  `json:"geometry,omitempty"`
	Source          Source  `json:"source"`
	Alternatives    []Route `json:"alternatives,omitempty"`
}

func (r Route) DistanceKm() float64 {
	return r.DistanceMeters / 1000
}

func (r Route) DurationMinutes() float64 {
	return r.DurationSeconds / 60
}

type Options struct {
	// Profile is car, truck or foot; empty means car.
	Profile      string
	Alternatives bool
}

type Config struct {
	Namespace       string
	TTL             time.Duration
	ProviderTimeout time.Duration
	MaxWaypoints    int
	// Precision of geometries handed to callers (5 or 6).
	Precision int
}
