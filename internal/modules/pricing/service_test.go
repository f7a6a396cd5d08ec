package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"haul/internal/audit"
	"haul/internal/modules/routing"
	"haul/internal/types"
)

var (
	tunis   = types.Point{Lat: 36.8065, Lng: 10.1815}
	sousse  = types.Point{Lat: 35.8256, Lng: 10.6369}
	hammam  = types.Point{Lat: 36.4, Lng: 10.6167}
	vanRate = Tariff{VehicleClass: VehicleVan, BaseFare: 10, PerKmRate: 0.5, PerMinuteRate: 0.1, ConvoyeurSurcharge: 15}
)

type fakeResolver struct {
	mu     sync.Mutex
	routes map[string]routing.Route
	cached map[string]bool
	err    error
	calls  []string
}

func legKey(a, b types.Point) string {
	return fmt.Sprintf("%s>%s", a, b)
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		routes: map[string]routing.Route{
			legKey(tunis, sousse): {DistanceMeters: 140000, DurationSeconds: 7200, Source: routing.SourceProvider},
			legKey(hammam, tunis): {DistanceMeters: 60000, DurationSeconds: 3000, Source: routing.SourceProvider},
		},
		cached: map[string]bool{},
	}
}

func (f *fakeResolver) Resolve(_ context.Context, waypoints []types.Point, opts routing.Options) (routing.Route, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := legKey(waypoints[0], waypoints[1])
	f.calls = append(f.calls, key+"/"+opts.Profile)
	if f.err != nil {
		return routing.Route{}, false, f.err
	}
	if waypoints[0] == waypoints[1] {
		return routing.Route{Source: routing.SourceFallback}, false, nil
	}
	return f.routes[key], f.cached[key], nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func oneWay(class VehicleClass, traffic TrafficLevel) Request {
	return Request{Pickup: tunis, Dropoff: sousse, VehicleClass: class, TripType: TripOneWay, TrafficLevel: traffic}
}

func TestService_Estimate(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		tariff    Tariff
		wantDist  float64
		wantTime  float64
		wantSurch float64
		wantTotal float64
	}{
		{
			name:   "Tunis to Sousse, medium traffic",
			req:    oneWay(VehicleVan, TrafficMedium),
			tariff: vanRate,
			// Dist: 140 km * 0.5 = 70.
			// Time: 120 min * 0.1 * 1.2 = 14.4.
			wantDist:  70,
			wantTime:  14.4,
			wantTotal: 94.4,
		},
		{
			name:   "Tunis to Sousse, one unit per minute",
			req:    oneWay(VehicleVan, TrafficMedium),
			tariff: Tariff{VehicleClass: VehicleVan, BaseFare: 10, PerKmRate: 0.5, PerMinuteRate: 1},
			// Time: 120 min * 1.0 * 1.2 = 144. Total: 10 + 70 + 144.
			wantDist:  70,
			wantTime:  144,
			wantTotal: 224,
		},
		{
			name:      "Low traffic leaves time cost unscaled",
			req:       oneWay(VehicleVan, TrafficLow),
			tariff:    vanRate,
			wantDist:  70,
			wantTime:  12,
			wantTotal: 92,
		},
		{
			name:   "Dense traffic",
			req:    oneWay(VehicleVan, TrafficDense),
			tariff: vanRate,
			// Time: 120 * 0.1 * 1.5 = 18.
			wantDist:  70,
			wantTime:  18,
			wantTotal: 98,
		},
		{
			name: "Round trip doubles distance and time, not base fare",
			req: Request{Pickup: tunis, Dropoff: sousse, VehicleClass: VehicleVan,
				TripType: TripRoundTrip, TrafficLevel: TrafficMedium},
			tariff: vanRate,
			// Dist: 70 * 2 = 140. Time: 14.4 * 2 = 28.8. Total: 10 + 140 + 28.8.
			wantDist:  140,
			wantTime:  28.8,
			wantTotal: 178.8,
		},
		{
			name: "Convoyeur surcharge",
			req: Request{Pickup: tunis, Dropoff: sousse, VehicleClass: VehicleVan,
				TripType: TripOneWay, TrafficLevel: TrafficMedium, HasConvoyeur: true},
			tariff:    vanRate,
			wantDist:  70,
			wantTime:  14.4,
			wantSurch: 15,
			wantTotal: 109.4,
		},
		{
			name: "Zero distance costs the base fare",
			req: Request{Pickup: tunis, Dropoff: tunis, VehicleClass: VehicleVan,
				TripType: TripRoundTrip, TrafficLevel: TrafficDense},
			tariff:    vanRate,
			wantTotal: 10,
		},
		{
			name: "Zero distance with convoyeur",
			req: Request{Pickup: tunis, Dropoff: tunis, VehicleClass: VehicleVan,
				TripType: TripOneWay, TrafficLevel: TrafficLow, HasConvoyeur: true},
			tariff:    vanRate,
			wantSurch: 15,
			wantTotal: 25,
		},
		{
			name:   "Rounding to the minor unit",
			req:    oneWay(VehicleHeavyTruck, TrafficMedium),
			tariff: Tariff{BaseFare: 40.004, PerKmRate: 1.8333, PerMinuteRate: 0.3333},
			// Dist: 140 * 1.8333 = 256.662 -> 256.66.
			// Time: 120 * 0.3333 * 1.2 = 47.9952 -> 48.
			// Total: 40 + 256.66 + 48.
			wantDist:  256.66,
			wantTime:  48,
			wantTotal: 344.66,
		},
	}

	s := NewService(newFakeResolver(), nil, nil, zap.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Estimate(context.Background(), tt.req, tt.tariff, DefaultConfig())
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if !near(got.DistanceCost, tt.wantDist) {
				t.Errorf("DistanceCost = %v, want %v", got.DistanceCost, tt.wantDist)
			}
			if !near(got.TimeCost, tt.wantTime) {
				t.Errorf("TimeCost = %v, want %v", got.TimeCost, tt.wantTime)
			}
			if !near(got.Surcharges, tt.wantSurch) {
				t.Errorf("Surcharges = %v, want %v", got.Surcharges, tt.wantSurch)
			}
			if !near(got.Total, tt.wantTotal) {
				t.Errorf("Total = %v, want %v", got.Total, tt.wantTotal)
			}
		})
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestService_EstimateFields(t *testing.T) {
	resolver := newFakeResolver()
	resolver.cached[legKey(tunis, sousse)] = true
	s := NewService(resolver, nil, nil, nil)

	req := oneWay(VehicleVan, TrafficMedium)
	req.DriverLocation = &hammam
	got, err := s.Estimate(context.Background(), req, vanRate, DefaultConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, VehicleVan, got.VehicleClass)
	assert.Equal(t, "TND", got.Currency)
	assert.Equal(t, 10.0, got.BaseFare)
	assert.Equal(t, Multipliers{Trip: 1, Traffic: 1.2}, got.MultiplierApplied)
	assert.True(t, got.RouteCached)
	assert.False(t, got.CreatedAt.IsZero())

	require.NotNil(t, got.DriverToPickup)
	assert.Equal(t, 60000.0, got.DriverToPickup.DistanceMeters)
	assert.False(t, got.DriverToPickupCached)
	// the approach leg is informational and does not change the fare
	assert.InDelta(t, 94.4, got.Total, 1e-9)

	assert.ElementsMatch(t, []string{
		legKey(tunis, sousse) + "/car",
		legKey(hammam, tunis) + "/car",
	}, resolver.calls)
}

func TestService_EstimateTruckProfile(t *testing.T) {
	resolver := newFakeResolver()
	s := NewService(resolver, nil, nil, nil)

	_, err := s.Estimate(context.Background(), oneWay(VehicleMediumTruck, TrafficLow), Tariff{BaseFare: 1}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{legKey(tunis, sousse) + "/truck"}, resolver.calls)
}

func TestService_EstimateValidation(t *testing.T) {
	bad := types.Point{Lat: -91, Lng: 0}
	valid := oneWay(VehicleVan, TrafficMedium)

	tests := []struct {
		name   string
		mutate func(*Request, *Tariff, *Config)
	}{
		{"pickup out of range", func(r *Request, _ *Tariff, _ *Config) { r.Pickup = bad }},
		{"dropoff nan", func(r *Request, _ *Tariff, _ *Config) { r.Dropoff = types.Point{Lat: math.NaN()} }},
		{"driver location out of range", func(r *Request, _ *Tariff, _ *Config) { r.DriverLocation = &bad }},
		{"missing vehicle class", func(r *Request, _ *Tariff, _ *Config) { r.VehicleClass = "" }},
		{"unknown trip type", func(r *Request, _ *Tariff, _ *Config) { r.TripType = "multi_stop" }},
		{"missing traffic level", func(r *Request, _ *Tariff, _ *Config) { r.TrafficLevel = "" }},
		{"negative base fare", func(_ *Request, tr *Tariff, _ *Config) { tr.BaseFare = -1 }},
		{"negative per km rate", func(_ *Request, tr *Tariff, _ *Config) { tr.PerKmRate = -0.5 }},
		{"tariff for another class", func(_ *Request, tr *Tariff, _ *Config) { tr.VehicleClass = VehicleHeavyTruck }},
		{"zero trip multiplier", func(_ *Request, _ *Tariff, c *Config) { c.TripTypeMultipliers.OneWay = 0 }},
		{"negative traffic multiplier", func(_ *Request, _ *Tariff, c *Config) { c.TrafficMultipliers.Dense = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, tariff, cfg := valid, vanRate, DefaultConfig()
			tt.mutate(&req, &tariff, &cfg)

			resolver := newFakeResolver()
			s := NewService(resolver, nil, nil, nil)
			_, err := s.Estimate(context.Background(), req, tariff, cfg)
			if !errors.Is(err, types.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if resolver.callCount() != 0 {
				t.Fatalf("resolver called %d times before validation failed", resolver.callCount())
			}
		})
	}
}

func TestService_EstimateResolverError(t *testing.T) {
	resolver := newFakeResolver()
	resolver.err = fmt.Errorf("%w: provider down", types.ErrUpstreamUnavailable)
	s := NewService(resolver, nil, nil, nil)

	_, err := s.Estimate(context.Background(), oneWay(VehicleVan, TrafficLow), vanRate, DefaultConfig())
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
}

type recordingAudit struct {
	events []audit.Event
	err    error
}

func (r *recordingAudit) Record(_ context.Context, e audit.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestService_Quote(t *testing.T) {
	rec := &recordingAudit{}
	s := NewService(newFakeResolver(), NewStaticSource(DefaultTariffs(), DefaultConfig()), rec, zap.NewNop())

	got, err := s.Quote(context.Background(), oneWay(VehicleVan, TrafficMedium))
	require.NoError(t, err)
	assert.InDelta(t, 94.4, got.Total, 1e-9)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, got.ID, ev.EstimateID)
	assert.Equal(t, "van", ev.VehicleClass)
	assert.Equal(t, "provider", ev.RouteSource)
	assert.Equal(t, types.Money{Amount: 9440, Currency: "TND"}, ev.Total)
}

func TestService_QuoteAuditFailureIsNotFatal(t *testing.T) {
	rec := &recordingAudit{err: errors.New("broker unavailable")}
	s := NewService(newFakeResolver(), NewStaticSource(DefaultTariffs(), DefaultConfig()), rec, zap.NewNop())

	_, err := s.Quote(context.Background(), oneWay(VehicleVan, TrafficMedium))
	require.NoError(t, err)
	assert.Len(t, rec.events, 1)
}

func TestService_QuoteUnknownClass(t *testing.T) {
	resolver := newFakeResolver()
	s := NewService(resolver, NewStaticSource(DefaultTariffs(), DefaultConfig()), nil, nil)

	_, err := s.Quote(context.Background(), oneWay("cargo_bike", TrafficLow))
	assert.ErrorIs(t, err, ErrUnknownVehicleClass)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, 0, resolver.callCount())
}
