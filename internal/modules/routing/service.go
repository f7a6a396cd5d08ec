// README: Route resolver: provider routing with cache and Haversine fallback.
package routing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"haul/internal/cache"
	"haul/internal/geo"
	"haul/internal/maps"
	"haul/internal/types"
)

type Service struct {
	router maps.Router
	cache  *cache.Layer
	cfg    Config
	log    *zap.Logger
}

func NewService(router maps.Router, layer *cache.Layer, cfg Config, log *zap.Logger) *Service {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}
	if cfg.MaxWaypoints <= 0 {
		cfg.MaxWaypoints = DefaultMaxWaypoints
	}
	if cfg.Precision == 0 {
		cfg.Precision = geo.DefaultPrecision
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{router: router, cache: layer, cfg: cfg, log: log}
}

// Resolve returns a route through waypoints and whether it came from cache.
//
// With exactly two waypoints a provider failure is never surfaced: the
// Haversine estimate is returned tagged as fallback. With more waypoints the
// provider error is returned wrapping types.ErrUpstreamUnavailable.
func (s *Service) Resolve(ctx context.Context, waypoints []types.Point, opts Options) (Route, bool, error) {
	profile, err := s.validate(waypoints, opts)
	if err != nil {
		return Route{}, false, err
	}
	req := maps.RouteRequest{Waypoints: waypoints, Profile: profile, Alternatives: opts.Alternatives}

	if len(waypoints) > 2 {
		route, err := s.fetch(ctx, req)
		if err != nil {
			return Route{}, false, fmt.Errorf("%w: %w", types.ErrUpstreamUnavailable, err)
		}
		return route, false, nil
	}

	from, to := waypoints[0], waypoints[1]
	if from == to {
		return s.fallback(from, to), false, nil
	}

	if opts.Alternatives {
		route, err := s.fetch(ctx, req)
		if err != nil {
			return s.fallbackAfter(err, req), false, nil
		}
		return route, false, nil
	}

	key := cache.RouteKey(s.cfg.Namespace, profile, false, waypoints)
	route, cached, err := cache.GetOrCompute(ctx, s.cache, key, s.cfg.TTL, func(ctx context.Context) (Route, error) {
		return s.fetch(ctx, req)
	})
	if err != nil {
		return s.fallbackAfter(err, req), false, nil
	}
	return route, cached, nil
}

// fetch makes one bounded provider call.
func (s *Service) fetch(ctx context.Context, req maps.RouteRequest) (Route, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	candidates, err := s.router.Route(ctx, req)
	if err != nil {
		return Route{}, err
	}
	if len(candidates) == 0 {
		return Route{}, maps.ErrNoRoute
	}

	route := fromCandidate(candidates[0])
	if req.Alternatives {
		for _, c := range candidates[1:] {
			route.Alternatives = append(route.Alternatives, fromCandidate(c))
		}
	}
	return route, nil
}

func (s *Service) fallbackAfter(err error, req maps.RouteRequest) Route {
	s.log.Warn("route provider failed, using haversine fallback",
		zap.Stringer("from", req.Waypoints[0]),
		zap.Stringer("to", req.Waypoints[1]),
		zap.String("profile", req.Profile),
		zap.Error(err),
	)
	return s.fallback(req.Waypoints[0], req.Waypoints[1])
}

func (s *Service) fallback(from, to types.Point) Route {
	est := geo.Estimate(from, to)
	geometry := est.Geometry
	if s.cfg.Precision != geo.DefaultPrecision {
		geometry, _ = geo.Encode([]types.Point{from, to}, s.cfg.Precision)
	}
	return Route{
		DistanceMeters:  est.DistanceMeters,
		DurationSeconds: est.DurationSeconds,
		Geometry:        geometry,
		Source:          SourceFallback,
	}
}

func (s *Service) validate(waypoints []types.Point, opts Options) (string, error) {
	if len(waypoints) < 2 {
		return "", fmt.Errorf("%w: at least 2 waypoints required, got %d", types.ErrValidation, len(waypoints))
	}
	if len(waypoints) > s.cfg.MaxWaypoints {
		return "", fmt.Errorf("%w: at most %d waypoints allowed, got %d", types.ErrValidation, s.cfg.MaxWaypoints, len(waypoints))
	}
	for i, p := range waypoints {
		if err := p.Validate(); err != nil {
			return "", fmt.Errorf("waypoint %d: %w", i, err)
		}
	}

	profile := strings.ToLower(strings.TrimSpace(opts.Profile))
	switch profile {
	case "":
		return maps.ProfileCar, nil
	case maps.ProfileCar, maps.ProfileTruck, maps.ProfileFoot:
		return profile, nil
	default:
		return "", fmt.Errorf("%w: unsupported profile %q", types.ErrValidation, opts.Profile)
	}
}

func fromCandidate(c maps.RouteCandidate) Route {
	return Route{
		DistanceMeters:  c.DistanceMeters,
		DurationSeconds: c.DurationSeconds,
		Geometry:        c.Geometry,
		Source:          SourceProvider,
	}
}
