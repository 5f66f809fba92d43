package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/model"
	"github.com/iliyamo/villa-booking/internal/service"
)

// VillaHandler serves the public villa catalogue, availability and quotes.
type VillaHandler struct {
	Store    service.Store
	Bookings *service.BookingService
	Logger   *zap.Logger
}

// List handles GET /api/villas.
func (h *VillaHandler) List(c echo.Context) error {
	villas, err := h.Store.ListVillas(c.Request().Context())
	if err != nil {
		return writeError(c, h.Logger, err, "Villa not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "villas": villas})
}

// Get handles GET /api/villas/:id.
func (h *VillaHandler) Get(c echo.Context) error {
	v, err := h.Store.GetVilla(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.Logger, err, "Villa not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "villa": v})
}

// stayQuery binds the check_in/check_out query parameters.
type stayQuery struct {
	CheckIn  string `query:"check_in" json:"check_in" validate:"required"`
	CheckOut string `query:"check_out" json:"check_out" validate:"required"`
}

func (h *VillaHandler) bindStay(c echo.Context) (in, out model.Date, err error) {
	var q stayQuery
	if err = c.Bind(&q); err != nil {
		return in, out, &service.ValidationError{Message: "Invalid query parameters"}
	}
	if err = c.Validate(&q); err != nil {
		return in, out, err
	}
	return parseStay(q.CheckIn, q.CheckOut)
}

// Availability handles GET /api/villas/:id/availability.
func (h *VillaHandler) Availability(c echo.Context) error {
	in, out, err := h.bindStay(c)
	if err != nil {
		return writeError(c, h.Logger, err, "Villa not found")
	}
	ok, err := h.Bookings.CheckAvailability(c.Request().Context(), c.Param("id"), in, out)
	if err != nil {
		return writeError(c, h.Logger, err, "Villa not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"available": ok,
		"check_in":  in,
		"check_out": out,
	})
}

// Quote handles GET /api/villas/:id/quote.
func (h *VillaHandler) Quote(c echo.Context) error {
	in, out, err := h.bindStay(c)
	if err != nil {
		return writeError(c, h.Logger, err, "Villa not found")
	}
	q, err := h.Bookings.Quote(c.Request().Context(), c.Param("id"), in, out)
	if err != nil {
		return writeError(c, h.Logger, err, "Villa not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "quote": q})
}

func parseStay(checkIn, checkOut string) (in, out model.Date, err error) {
	if in, err = model.ParseDate(checkIn); err != nil {
		return in, out, &service.ValidationError{Message: "check_in must be a date in YYYY-MM-DD format"}
	}
	if out, err = model.ParseDate(checkOut); err != nil {
		return in, out, &service.ValidationError{Message: "check_out must be a date in YYYY-MM-DD format"}
	}
	return in, out, nil
}
