// README: In-memory tariff source used when no database is configured.
package pricing

import (
	"context"
	"fmt"
)

type StaticSource struct {
	tariffs map[VehicleClass]Tariff
	cfg     Config
}

func NewStaticSource(tariffs []Tariff, cfg Config) *StaticSource {
	m := make(map[VehicleClass]Tariff, len(tariffs))
	for _, t := range tariffs {
		m[t.VehicleClass] = t
	}
	return &StaticSource{tariffs: m, cfg: cfg}
}

// DefaultTariffs are the built-in rate cards in TND.
func DefaultTariffs() []Tariff {
	return []Tariff{
		{VehicleClass: VehicleVan, BaseFare: 10, PerKmRate: 0.5, PerMinuteRate: 0.1, ConvoyeurSurcharge: 15},
		{VehicleClass: VehicleLightTruck, BaseFare: 15, PerKmRate: 0.8, PerMinuteRate: 0.15, ConvoyeurSurcharge: 20},
		{VehicleClass: VehicleMediumTruck, BaseFare: 25, PerKmRate: 1.2, PerMinuteRate: 0.2, ConvoyeurSurcharge: 25},
		{VehicleClass: VehicleHeavyTruck, BaseFare: 40, PerKmRate: 1.8, PerMinuteRate: 0.3, ConvoyeurSurcharge: 30},
	}
}

func (s *StaticSource) Tariff(_ context.Context, class VehicleClass) (Tariff, error) {
	t, ok := s.tariffs[class]
	if !ok {
		return Tariff{}, fmt.Errorf("%w: %q", ErrUnknownVehicleClass, class)
	}
	return t, nil
}

func (s *StaticSource) Config(context.Context) (Config, error) {
	return s.cfg, nil
}
