// README: Route handlers for resolve and polyline decode.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"haul/internal/geo"
	"haul/internal/modules/routing"
	"haul/internal/types"
)

type RouteResolver interface {
	Resolve(ctx context.Context, waypoints []types.Point, opts routing.Options) (routing.Route, bool, error)
}

type RouteHandler struct {
	routes    RouteResolver
	precision int
}

// NewRouteHandler serves routes whose geometries are encoded at precision.
func NewRouteHandler(routes RouteResolver, precision int) *RouteHandler {
	if precision == 0 {
		precision = geo.DefaultPrecision
	}
	return &RouteHandler{routes: routes, precision: precision}
}

type resolveRouteReq struct {
	Waypoints     []types.Point `json:"waypoints" binding:"required"`
	Profile       string        `json:"profile"`
	Alternatives  bool          `json:"alternatives"`
	IncludePoints bool          `json:"include_points"`
}

type resolveRouteResp struct {
	Route  routing.Route `json:"route"`
	Cached bool          `json:"cached"`
	Points []types.Point `json:"points,omitempty"`
}

func (h *RouteHandler) Resolve(c *gin.Context) {
	var req resolveRouteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	route, cached, err := h.routes.Resolve(c.Request.Context(), req.Waypoints, routing.Options{
		Profile:      req.Profile,
		Alternatives: req.Alternatives,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := resolveRouteResp{Route: route, Cached: cached}
	if req.IncludePoints && route.Geometry != "" {
		points, err := geo.Decode(route.Geometry, h.precision)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		resp.Points = points
	}
	writeJSON(c, http.StatusOK, resp)
}

type decodeReq struct {
	Polyline  string `json:"polyline"`
	Precision int    `json:"precision"`
}

func (h *RouteHandler) Decode(c *gin.Context) {
	var req decodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	points, err := geo.Decode(req.Polyline, req.Precision)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if points == nil {
		points = []types.Point{}
	}
	writeJSON(c, http.StatusOK, gin.H{"points": points})
}
