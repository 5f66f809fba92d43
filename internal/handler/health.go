package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is a liveness probe for load balancers.  It returns plain "ok".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger is the part of the store the readiness probe needs.
type Pinger interface {
	Driver() string
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the store is reachable.
type HealthHandler struct {
	Store Pinger
}

// Ready handles GET /api/health.  It responds 503 when the store ping fails.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"success": false,
			"store":   h.Store.Driver(),
			"error":   "store unreachable",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "store": h.Store.Driver()})
}
