// README: Pricing engine: resolves trip legs and applies tariff math.
package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"haul/internal/audit"
	"haul/internal/maps"
	"haul/internal/modules/routing"
	"haul/internal/types"
)

type RouteResolver interface {
	Resolve(ctx context.Context, waypoints []types.Point, opts routing.Options) (routing.Route, bool, error)
}

// TariffSource supplies rate cards and global multipliers.
type TariffSource interface {
	Tariff(ctx context.Context, class VehicleClass) (Tariff, error)
	Config(ctx context.Context) (Config, error)
}

type Service struct {
	routes  RouteResolver
	tariffs TariffSource
	audit   audit.Recorder
	log     *zap.Logger
	now     func() time.Time
}

func NewService(routes RouteResolver, tariffs TariffSource, recorder audit.Recorder, log *zap.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{routes: routes, tariffs: tariffs, audit: recorder, log: log, now: time.Now}
}

// Quote prices req with the tariff of its vehicle class and records an audit event.
func (s *Service) Quote(ctx context.Context, req Request) (Estimate, error) {
	if req.VehicleClass == "" {
		return Estimate{}, fmt.Errorf("%w: vehicle class is required", types.ErrValidation)
	}
	tariff, err := s.tariffs.Tariff(ctx, req.VehicleClass)
	if err != nil {
		return Estimate{}, err
	}
	cfg, err := s.tariffs.Config(ctx)
	if err != nil {
		return Estimate{}, fmt.Errorf("load pricing config: %w", err)
	}

	est, err := s.Estimate(ctx, req, tariff, cfg)
	if err != nil {
		return Estimate{}, err
	}

	if err := s.audit.Record(ctx, auditEvent(req, est)); err != nil {
		s.log.Warn("price audit failed", zap.String("estimate_id", est.ID), zap.Error(err))
	}
	return est, nil
}

// Estimate prices req. The trip multiplier scales the distance and time
// portions, never the base fare; the traffic multiplier scales time only.
func (s *Service) Estimate(ctx context.Context, req Request, tariff Tariff, cfg Config) (Estimate, error) {
	if err := validateRequest(req); err != nil {
		return Estimate{}, err
	}
	if err := validateTariff(tariff, req.VehicleClass); err != nil {
		return Estimate{}, err
	}
	if err := validateConfig(cfg); err != nil {
		return Estimate{}, err
	}

	opts := routing.Options{Profile: profileFor(req.VehicleClass)}
	var (
		route, toPickup             routing.Route
		routeCached, toPickupCached bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		route, routeCached, err = s.routes.Resolve(gctx, []types.Point{req.Pickup, req.Dropoff}, opts)
		if err != nil {
			return fmt.Errorf("resolve trip: %w", err)
		}
		return nil
	})
	if req.DriverLocation != nil {
		g.Go(func() error {
			var err error
			toPickup, toPickupCached, err = s.routes.Resolve(gctx, []types.Point{*req.DriverLocation, req.Pickup}, opts)
			if err != nil {
				return fmt.Errorf("resolve driver to pickup: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Estimate{}, err
	}

	tripMult := cfg.tripMultiplier(req.TripType)
	trafficMult := cfg.trafficMultiplier(req.TrafficLevel)

	distanceCost := types.RoundMinor(route.DistanceKm() * tariff.PerKmRate * tripMult)
	timeCost := types.RoundMinor(route.DurationMinutes() * tariff.PerMinuteRate * tripMult * trafficMult)
	var surcharges float64
	if req.HasConvoyeur {
		surcharges = types.RoundMinor(tariff.ConvoyeurSurcharge)
	}
	baseFare := types.RoundMinor(tariff.BaseFare)

	est := Estimate{
		ID:                uuid.NewString(),
		VehicleClass:      req.VehicleClass,
		Currency:          currencyOf(cfg),
		Route:             route,
		BaseFare:          baseFare,
		DistanceCost:      distanceCost,
		TimeCost:          timeCost,
		Surcharges:        surcharges,
		MultiplierApplied: Multipliers{Trip: tripMult, Traffic: trafficMult},
		Total:             types.RoundMinor(baseFare + distanceCost + timeCost + surcharges),
		RouteCached:       routeCached,
		CreatedAt:         s.now().UTC(),
	}
	if req.DriverLocation != nil {
		est.DriverToPickup = &toPickup
		est.DriverToPickupCached = toPickupCached
	}
	return est, nil
}

// profileFor routes vans as cars and everything heavier as trucks.
func profileFor(class VehicleClass) string {
	if class == VehicleVan {
		return maps.ProfileCar
	}
	return maps.ProfileTruck
}

func currencyOf(cfg Config) string {
	if cfg.Currency == "" {
		return DefaultCurrency
	}
	return cfg.Currency
}

func validateRequest(req Request) error {
	if err := req.Pickup.Validate(); err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	if err := req.Dropoff.Validate(); err != nil {
		return fmt.Errorf("dropoff: %w", err)
	}
	if req.DriverLocation != nil {
		if err := req.DriverLocation.Validate(); err != nil {
			return fmt.Errorf("driver location: %w", err)
		}
	}
	if req.VehicleClass == "" {
		return fmt.Errorf("%w: vehicle class is required", types.ErrValidation)
	}
	switch req.TripType {
	case TripOneWay, TripRoundTrip:
	default:
		return fmt.Errorf("%w: unsupported trip type %q", types.ErrValidation, req.TripType)
	}
	switch req.TrafficLevel {
	case TrafficLow, TrafficMedium, TrafficDense:
	default:
		return fmt.Errorf("%w: unsupported traffic level %q", types.ErrValidation, req.TrafficLevel)
	}
	return nil
}

func validateTariff(t Tariff, class VehicleClass) error {
	if t.VehicleClass != "" && t.VehicleClass != class {
		return fmt.Errorf("%w: tariff is for %q, request is for %q", types.ErrValidation, t.VehicleClass, class)
	}
	for name, v := range map[string]float64{
		"base fare":           t.BaseFare,
		"per km rate":         t.PerKmRate,
		"per minute rate":     t.PerMinuteRate,
		"convoyeur surcharge": t.ConvoyeurSurcharge,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", types.ErrValidation, name)
		}
	}
	return nil
}

func validateConfig(c Config) error {
	for name, v := range map[string]float64{
		"one way multiplier":        c.TripTypeMultipliers.OneWay,
		"round trip multiplier":     c.TripTypeMultipliers.RoundTrip,
		"low traffic multiplier":    c.TrafficMultipliers.Low,
		"medium traffic multiplier": c.TrafficMultipliers.Medium,
		"dense traffic multiplier":  c.TrafficMultipliers.Dense,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %s must be positive", types.ErrValidation, name)
		}
	}
	return nil
}

func auditEvent(req Request, est Estimate) audit.Event {
	return audit.Event{
		EstimateID:      est.ID,
		VehicleClass:    string(est.VehicleClass),
		TripType:        string(req.TripType),
		TrafficLevel:    string(req.TrafficLevel),
		Pickup:          req.Pickup,
		Dropoff:         req.Dropoff,
		DistanceMeters:  est.Route.DistanceMeters,
		DurationSeconds: est.Route.DurationSeconds,
		RouteSource:     string(est.Route.Source),
		RouteCached:     est.RouteCached,
		Total:           types.MoneyFromFloat(est.Total, est.Currency),
		CreatedAt:       est.CreatedAt,
	}
}
