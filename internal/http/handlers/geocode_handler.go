// README: Geocoding handlers for autocomplete and reverse lookup.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"haul/internal/modules/geocoding"
	"haul/internal/types"
)

type Geocoder interface {
	Autocomplete(ctx context.Context, query string, opts geocoding.AutocompleteOptions) ([]geocoding.Address, bool, error)
	Reverse(ctx context.Context, p types.Point) (geocoding.Address, bool, error)
}

type GeocodeHandler struct {
	geocoder Geocoder
}

func NewGeocodeHandler(g Geocoder) *GeocodeHandler {
	return &GeocodeHandler{geocoder: g}
}

func (h *GeocodeHandler) Autocomplete(c *gin.Context) {
	opts := geocoding.AutocompleteOptions{}
	if c.Query("lat") != "" || c.Query("lng") != "" {
		p, err := queryPoint(c)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		opts.Near = &p
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "limit must be an integer")
			return
		}
		opts.Limit = n
	}

	results, cached, err := h.geocoder.Autocomplete(c.Request.Context(), c.Query("q"), opts)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"results": results, "cached": cached})
}

func (h *GeocodeHandler) Reverse(c *gin.Context) {
	p, err := queryPoint(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	addr, cached, err := h.geocoder.Reverse(c.Request.Context(), p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"address": addr, "cached": cached})
}

func queryPoint(c *gin.Context) (types.Point, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("%w: lat must be a number", types.ErrValidation)
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("%w: lng must be a number", types.ErrValidation)
	}
	return types.Point{Lat: lat, Lng: lng}, nil
}
