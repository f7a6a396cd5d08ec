// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"haul/internal/geo"
	"haul/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
}

// writeServiceError maps the error taxonomy to status codes.
func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, types.ErrValidation), errors.Is(err, geo.ErrDecode):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrUpstreamUnavailable):
		writeError(c, http.StatusServiceUnavailable, "upstream provider unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
