// README: Tariff store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Tariff(ctx context.Context, class VehicleClass) (Tariff, error) {
	row := s.db.QueryRow(ctx, `
        SELECT vehicle_class, base_fare, per_km_rate, per_minute_rate, convoyeur_surcharge
        FROM vehicle_tariffs
        WHERE vehicle_class = $1`, string(class),
	)

	var t Tariff
	var cls string
	err := row.Scan(&cls, &t.BaseFare, &t.PerKmRate, &t.PerMinuteRate, &t.ConvoyeurSurcharge)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tariff{}, fmt.Errorf("%w: %q", ErrUnknownVehicleClass, class)
	}
	if err != nil {
		return Tariff{}, err
	}
	t.VehicleClass = VehicleClass(cls)
	return t, nil
}

// Config returns the global multipliers, or DefaultConfig when none are stored.
func (s *Store) Config(ctx context.Context) (Config, error) {
	row := s.db.QueryRow(ctx, `
        SELECT one_way_multiplier, round_trip_multiplier,
               traffic_low_multiplier, traffic_medium_multiplier, traffic_dense_multiplier,
               currency
        FROM pricing_config
        WHERE id = 1`,
	)

	var c Config
	err := row.Scan(
		&c.TripTypeMultipliers.OneWay, &c.TripTypeMultipliers.RoundTrip,
		&c.TrafficMultipliers.Low, &c.TrafficMultipliers.Medium, &c.TrafficMultipliers.Dense,
		&c.Currency,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

func (s *Store) UpsertTariff(ctx context.Context, t Tariff) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO vehicle_tariffs (vehicle_class, base_fare, per_km_rate, per_minute_rate, convoyeur_surcharge, updated_at)
        VALUES ($1, $2, $3, $4, $5, now())
        ON CONFLICT (vehicle_class) DO UPDATE SET
            base_fare = EXCLUDED.base_fare,
            per_km_rate = EXCLUDED.per_km_rate,
            per_minute_rate = EXCLUDED.per_minute_rate,
            convoyeur_surcharge = EXCLUDED.convoyeur_surcharge,
            updated_at = now()`,
		string(t.VehicleClass), t.BaseFare, t.PerKmRate, t.PerMinuteRate, t.ConvoyeurSurcharge,
	)
	return err
}

func (s *Store) SaveConfig(ctx context.Context, c Config) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO pricing_config (id, one_way_multiplier, round_trip_multiplier,
            traffic_low_multiplier, traffic_medium_multiplier, traffic_dense_multiplier, currency, updated_at)
        VALUES (1, $1, $2, $3, $4, $5, $6, now())
        ON CONFLICT (id) DO UPDATE SET
            one_way_multiplier = EXCLUDED.one_way_multiplier,
            round_trip_multiplier = EXCLUDED.round_trip_multiplier,
            traffic_low_multiplier = EXCLUDED.traffic_low_multiplier,
            traffic_medium_multiplier = EXCLUDED.traffic_medium_multiplier,
            traffic_dense_multiplier = EXCLUDED.traffic_dense_multiplier,
            currency = EXCLUDED.currency,
            updated_at = now()`,
		c.TripTypeMultipliers.OneWay, c.TripTypeMultipliers.RoundTrip,
		c.TrafficMultipliers.Low, c.TrafficMultipliers.Medium, c.TrafficMultipliers.Dense,
		currencyOf(c),
	)
	return err
}
