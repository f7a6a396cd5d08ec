// README: Pricing handler for trip estimates.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"haul/internal/modules/pricing"
	"haul/internal/types"
)

type Quoter interface {
	Quote(ctx context.Context, req pricing.Request) (pricing.Estimate, error)
}

type PricingHandler struct {
	pricing Quoter
}

func NewPricingHandler(q Quoter) *PricingHandler {
	return &PricingHandler{pricing: q}
}

type estimateReq struct {
	Pickup         *types.Point `json:"pickup" binding:"required"`
	Dropoff        *types.Point `json:"dropoff" binding:"required"`
	VehicleClass   string       `json:"vehicle_class" binding:"required"`
	TripType       string       `json:"trip_type"`
	HasConvoyeur   bool         `json:"has_convoyeur"`
	TrafficLevel   string       `json:"traffic_level"`
	DriverLocation *types.Point `json:"driver_location"`
}

func (h *PricingHandler) Estimate(c *gin.Context) {
	var req estimateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	tripType := pricing.TripType(req.TripType)
	if tripType == "" {
		tripType = pricing.TripOneWay
	}
	traffic := pricing.TrafficLevel(req.TrafficLevel)
	if traffic == "" {
		traffic = pricing.TrafficLow
	}

	est, err := h.pricing.Quote(c.Request.Context(), pricing.Request{
		Pickup:         *req.Pickup,
		Dropoff:        *req.Dropoff,
		VehicleClass:   pricing.VehicleClass(req.VehicleClass),
		TripType:       tripType,
		HasConvoyeur:   req.HasConvoyeur,
		TrafficLevel:   traffic,
		DriverLocation: req.DriverLocation,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"estimate": est, "cached": est.RouteCached})
}
