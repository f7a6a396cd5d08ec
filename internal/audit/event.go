// README: Price audit event and its CloudEvents-style envelope.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"haul/internal/types"
)

const (
	EventSource        = "haul-pricing"
	TypePriceEstimated = "haul.price.estimated"
	specVersion        = "1.0"
)

// Event records one issued price estimate.
type Event struct {
	EstimateID      string      `json:"estimate_id"`
	VehicleClass    string      `json:"vehicle_class"`
	TripType        string      `json:"trip_type"`
	TrafficLevel    string      `json:"traffic_level"`
	Pickup          types.Point `json:"pickup"`
	Dropoff         types.Point `json:"dropoff"`
	DistanceMeters  float64     `json:"distance_meters"`
	DurationSeconds float64     `json:"duration_seconds"`
	RouteSource     string      `json:"route_source"`
	RouteCached     bool        `json:"route_cached"`
	Total           types.Money `json:"total"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Envelope wraps an event payload for the audit topic.
type Envelope struct {
	SpecVersion string          `json:"specversion"`
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Type        string          `json:"type"`
	Time        time.Time       `json:"time"`
	Data        json.RawMessage `json:"data"`
}

func NewEnvelope(eventType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		SpecVersion: specVersion,
		ID:          uuid.NewString(),
		Source:      EventSource,
		Type:        eventType,
		Time:        time.Now().UTC(),
		Data:        raw,
	}, nil
}

func ParseEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Recorder publishes audit events. Callers treat failures as non-fatal.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }
