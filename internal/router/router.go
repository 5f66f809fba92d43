package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/handler"
	"github.com/iliyamo/villa-booking/internal/middleware"
)

// New returns an Echo instance with the shared middleware chain, the
// go-playground validator and the JSON error handler installed.
func New(logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.BodyLimit("1M"))
	return e
}

// RegisterRoutes registers the probes.  /healthz only says the process is
// up; /api/health also pings the store.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/health", h.Ready)
}
