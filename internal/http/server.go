// README: API gateway; registers gin routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"haul/internal/http/handlers"
	"haul/internal/http/middleware"
)

type ServerDeps struct {
	Routes    handlers.RouteResolver
	Geocoding handlers.Geocoder
	Pricing   handlers.Quoter
	// Precision of route geometries returned by Routes.
	Precision int
	Logger    *zap.Logger
}

// NewRouter builds the gin engine with request ID, access log and recovery middleware.
func NewRouter(deps ServerDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(log), middleware.Recovery(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	routeHandler := handlers.NewRouteHandler(deps.Routes, deps.Precision)
	api.POST("/routes", routeHandler.Resolve)
	api.POST("/routes/decode", routeHandler.Decode)

	geocodeHandler := handlers.NewGeocodeHandler(deps.Geocoding)
	api.GET("/geocode/autocomplete", geocodeHandler.Autocomplete)
	api.GET("/geocode/reverse", geocodeHandler.Reverse)

	pricingHandler := handlers.NewPricingHandler(deps.Pricing)
	api.POST("/pricing/estimate", pricingHandler.Estimate)

	return r
}
