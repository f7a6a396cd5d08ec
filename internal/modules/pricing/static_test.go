package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul/internal/types"
)

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(DefaultTariffs(), DefaultConfig())
	ctx := context.Background()

	van, err := src.Tariff(ctx, VehicleVan)
	require.NoError(t, err)
	assert.Equal(t, 10.0, van.BaseFare)

	for _, class := range []VehicleClass{VehicleLightTruck, VehicleMediumTruck, VehicleHeavyTruck} {
		_, err := src.Tariff(ctx, class)
		assert.NoError(t, err, class)
	}

	_, err = src.Tariff(ctx, "tuk_tuk")
	assert.ErrorIs(t, err, types.ErrValidation)

	cfg, err := src.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.2, cfg.TrafficMultipliers.Medium)
	assert.Equal(t, 2.0, cfg.TripTypeMultipliers.RoundTrip)
	assert.Equal(t, "TND", cfg.Currency)
}
