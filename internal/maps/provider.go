// README: Provider contracts for routing and geocoding backends.
package maps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"haul/internal/types"
)

// ErrNoRoute is returned when a provider answers but has no usable route.
var ErrNoRoute = errors.New("no route found")

const (
	ProfileCar   = "car"
	ProfileTruck = "truck"
	ProfileFoot  = "foot"
)

type RouteRequest struct {
	Waypoints    []types.Point
	Profile      string
	Alternatives bool
}

// RouteCandidate is one provider route. Geometry is an encoded polyline at the
// adapter's configured precision.
type RouteCandidate struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        string
}

// Router is a routing backend. The first candidate is the primary route.
type Router interface {
	Route(ctx context.Context, req RouteRequest) ([]RouteCandidate, error)
}

type AutocompleteRequest struct {
	Query    string
	Near     *types.Point
	Limit    int
	Language string
}

// Place is a raw provider candidate before normalization.
type Place struct {
	Label       string
	Name        string
	Street      string
	HouseNumber string
	Postcode    string
	City        string
	State       string
	Country     string
	CountryCode string
	Point       *types.Point
	PlaceID     string
}

// Geocoder is a forward/reverse geocoding backend. Reverse returns a nil place
// when nothing is found at the point.
type Geocoder interface {
	Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Place, error)
	Reverse(ctx context.Context, p types.Point) (*Place, error)
}

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
}

// drainClose returns the connection to the pool.
func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

func defaultHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{}
}
