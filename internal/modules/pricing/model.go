// README: Tariff, pricing config, request and estimate definitions.
package pricing

import (
	"fmt"
	"time"

	"haul/internal/modules/routing"
	"haul/internal/types"
)

var ErrUnknownVehicleClass = fmt.Errorf("%w: unknown vehicle class", types.ErrValidation)

type VehicleClass string

const (
	VehicleVan         VehicleClass = "van"
	VehicleLightTruck  VehicleClass = "light_truck"
	VehicleMediumTruck VehicleClass = "medium_truck"
	VehicleHeavyTruck  VehicleClass = "heavy_truck"
)

type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "low"
	TrafficMedium TrafficLevel = "medium"
	TrafficDense  TrafficLevel = "dense"
)

const DefaultCurrency = "TND"

// Tariff is the rate card of one vehicle class, in currency units.
type Tariff struct {
	VehicleClass       VehicleClass `json:"vehicle_class"`
	BaseFare           float64      `json:"base_fare"`
	PerKmRate          float64      `json:"per_km_rate"`
	PerMinuteRate      float64      `json:"per_minute_rate"`
	ConvoyeurSurcharge float64      `json:"convoyeur_surcharge"`
}

type TripTypeMultipliers struct {
	OneWay    float64 `json:"one_way"`
	RoundTrip float64 `json:"round_trip"`
}

type TrafficMultipliers struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	Dense  float64 `json:"dense"`
}

type Config struct {
	TripTypeMultipliers TripTypeMultipliers `json:"trip_type_multipliers"`
	TrafficMultipliers  TrafficMultipliers  `json:"traffic_multipliers"`
	Currency            string              `json:"currency"`
}

func DefaultConfig() Config {
	return Config{
		TripTypeMultipliers: TripTypeMultipliers{OneWay: 1, RoundTrip: 2},
		TrafficMultipliers:  TrafficMultipliers{Low: 1, Medium: 1.2, Dense: 1.5},
		Currency:            DefaultCurrency,
	}
}

func (c Config) tripMultiplier(t TripType) float64 {
	if t == TripRoundTrip {
		return c.TripTypeMultipliers.RoundTrip
	}
	return c.TripTypeMultipliers.OneWay
}

func (c Config) trafficMultiplier(l TrafficLevel) float64 {
	switch l {
	case TrafficMedium:
		return c.TrafficMultipliers.Medium
	case TrafficDense:
		return c.TrafficMultipliers.Dense
	default:
		return c.TrafficMultipliers.Low
	}
}

type Request struct {
	Pickup         types.Point  `json:"pickup"`
	Dropoff        types.Point  `json:"dropoff"`
	VehicleClass   VehicleClass `json:"vehicle_class"`
	TripType       TripType     `json:"trip_type"`
	HasConvoyeur   bool         `json:"has_convoyeur"`
	TrafficLevel   TrafficLevel `json:"traffic_level"`
	DriverLocation *types.Point `json:"driver_location,omitempty"`
}

type Multipliers struct {
	Trip    float64 `json:"trip"`
	Traffic float64 `json:"traffic"`
}

// Estimate is a priced trip. Amounts are rounded to the currency minor unit.
type Estimate struct {
	ID                   string         `json:"id"`
	VehicleClass         VehicleClass   `json:"vehicle_class"`
	Currency             string         `json:"currency"`
	Route                routing.Route  `json:"route"`
	DriverToPickup       *routing.Route `json:"driver_to_pickup,omitempty"`
	BaseFare             float64        `json:"base_fare"`
	DistanceCost         float64        `json:"distance_cost"`
	TimeCost             float64        `json:"time_cost"`
	Surcharges           float64        `json:"surcharges"`
	MultiplierApplied    Multipliers    `json:"multiplier_applied"`
	Total                float64        `json:"total"`
	RouteCached          bool           `json:"route_cached"`
	DriverToPickupCached bool           `json:"driver_to_pickup_cached"`
	CreatedAt            time.Time      `json:"created_at"`
}
