package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/model"
	"github.com/iliyamo/villa-booking/internal/service"
)

// BookingHandler serves the guest side of bookings.
type BookingHandler struct {
	Bookings *service.BookingService
	Logger   *zap.Logger
}

// bookingReq is the booking form.  The order of the required fields is
// the order they are listed in when missing.
type bookingReq struct {
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone" validate:"required"`
	CheckIn         string  `json:"check_in" validate:"required"`
	CheckOut        string  `json:"check_out" validate:"required"`
	Guests          int     `json:"guests" validate:"required"`
	VillaID         string  `json:"villa_id" validate:"required"`
	TotalAmount     float64 `json:"total_amount" validate:"required"`
	SpecialRequests string  `json:"special_requests" validate:"max=2000"`
	PaymentID       string  `json:"payment_id" validate:"max=64"`
	PaymentMethod   string  `json:"payment_method" validate:"max=32"`
	Status          string  `json:"status" validate:"omitempty,oneof=pending confirmed"`
}

// Create handles POST /api/booking.  Without payment_id the guest is
// charged here and the booking is confirmed; with one the booking is
// stored as given (pending by default).
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.Logger, err, "")
	}
	in, out, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return writeError(c, h.Logger, err, "")
	}

	res, err := h.Bookings.CreateBooking(c.Request().Context(), service.BookingInput{
		VillaID:         strings.TrimSpace(req.VillaID),
		CheckIn:         in,
		CheckOut:        out,
		Guests:          req.Guests,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		SpecialRequests: req.SpecialRequests,
		TotalAmount:     req.TotalAmount,
		PaymentID:       strings.TrimSpace(req.PaymentID),
		PaymentMethod:   req.PaymentMethod,
		Status:          req.Status,
	})
	if err != nil {
		return writeError(c, h.Logger, err, "Villa not found")
	}

	msg := "Booking created successfully"
	if res.Booking.Status == model.BookingConfirmed {
		msg = "Booking confirmed. A confirmation email has been sent to " + res.Booking.Email
	}
	body := echo.Map{
		"success": true,
		"booking": res.Booking,
		"message": msg,
	}
	if res.Transaction != nil {
		body["transaction"] = res.Transaction
	}
	return c.JSON(http.StatusCreated, body)
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	b, err := h.Bookings.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.Logger, err, "Booking not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "booking": b})
}

// ListByEmail handles GET /api/bookings?email=.  The email is required so
// guests can only list their own bookings.
func (h *BookingHandler) ListByEmail(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return fail(c, http.StatusBadRequest, "Missing required fields: email")
	}
	bookings, err := h.Bookings.ListBookings(c.Request().Context(), model.BookingFilter{Email: email})
	if err != nil {
		return writeError(c, h.Logger, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": bookings})
}
