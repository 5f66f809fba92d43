package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/villa-booking/internal/handler"
)

// Public bundles the guest-facing handlers and the middleware placed in
// front of them.  Cache wraps villa reads; Limiter wraps the writes.
type Public struct {
	Villas   *handler.VillaHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Cache    echo.MiddlewareFunc
	Limiter  echo.MiddlewareFunc
}

// RegisterPublic registers the unauthenticated /api endpoints.
func RegisterPublic(e *echo.Echo, p Public) {
	g := e.Group("/api")

	// Catalogue. Availability and quotes are not cached: they change with
	// every booking.
	g.GET("/villas", p.Villas.List, p.Cache)
	g.GET("/villas/:id", p.Villas.Get, p.Cache)
	g.GET("/villas/:id/availability", p.Villas.Availability)
	g.GET("/villas/:id/quote", p.Villas.Quote)

	g.POST("/booking", p.Bookings.Create, p.Limiter)
	g.GET("/bookings", p.Bookings.ListByEmail)
	g.GET("/bookings/:id", p.Bookings.Get)

	g.POST("/payment", p.Payments.Process, p.Limiter)
}
