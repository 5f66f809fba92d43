package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/villa-booking/internal/handler"
	"github.com/iliyamo/villa-booking/internal/middleware"
	"github.com/iliyamo/villa-booking/internal/utils"
)

// RegisterAdmin registers the owner endpoints under /api/admin.  Login is
// always mounted and answers 503 when no admin is configured.  Protected
// routes are skipped without a JWT secret.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.POST("/api/admin/login", a.Login, limiter)
	if jwtSecret == "" {
		return
	}
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)
	g.GET("/bookings", a.ListBookings)
	g.PATCH("/bookings/:id", a.UpdateStatus)
	g.GET("/transactions", a.ListTransactions)
}
