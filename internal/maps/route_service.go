// README: Google Directions routing backend.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"haul/internal/geo"
	"haul/internal/types"
)

// GoogleDirections routes through the Google Directions API.
type GoogleDirections struct {
	client    *maps.Client
	precision int
	language  string
}

// NewGoogleDirections creates a Directions-backed Router. Extra client options
// (base URL, HTTP client) are passed through to the Google client.
func NewGoogleDirections(apiKey string, precision int, language string, opts ...maps.ClientOption) (*GoogleDirections, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	if precision == 0 {
		precision = geo.DefaultPrecision
	}
	return &GoogleDirections{client: client, precision: precision, language: language}, nil
}

func (s *GoogleDirections) Route(ctx context.Context, req RouteRequest) ([]RouteCandidate, error) {
	if len(req.Waypoints) < 2 {
		return nil, fmt.Errorf("directions needs at least 2 waypoints, got %d", len(req.Waypoints))
	}
	last := len(req.Waypoints) - 1

	r := &maps.DirectionsRequest{
		Origin:       latLngString(req.Waypoints[0]),
		Destination:  latLngString(req.Waypoints[last]),
		Mode:         maps.TravelModeDriving,
		Alternatives: req.Alternatives,
		Language:     s.language,
	}
	if req.Profile == ProfileFoot {
		r.Mode = maps.TravelModeWalking
	}
	for _, p := range req.Waypoints[1:last] {
		r.Waypoints = append(r.Waypoints, latLngString(p))
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return nil, ErrNoRoute
	}

	out := make([]RouteCandidate, 0, len(routes))
	for _, route := range routes {
		if len(route.Legs) == 0 {
			continue
		}
		var c RouteCandidate
		for _, leg := range route.Legs {
			c.DistanceMeters += float64(leg.Distance.Meters)
			c.DurationSeconds += leg.Duration.Seconds()
		}
		if route.OverviewPolyline.Points != "" {
			c.Geometry, err = geo.Reencode(route.OverviewPolyline.Points, geo.DefaultPrecision, s.precision)
			if err != nil {
				return nil, fmt.Errorf("directions geometry: %w", err)
			}
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, ErrNoRoute
	}
	return out, nil
}

func latLngString(p types.Point) string {
	return formatFloat(p.Lat) + "," + formatFloat(p.Lng)
}
