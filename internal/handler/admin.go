package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/config"
	"github.com/iliyamo/villa-booking/internal/middleware"
	"github.com/iliyamo/villa-booking/internal/model"
	"github.com/iliyamo/villa-booking/internal/service"
	"github.com/iliyamo/villa-booking/internal/utils"
)

// AdminHandler lets the villa owner review bookings and payments.  There
// is a single admin account configured through ADMIN_EMAIL and
// ADMIN_PASSWORD_HASH.
type AdminHandler struct {
	Cfg      config.Config
	Bookings *service.BookingService
	Payments *service.PaymentService
	Logger   *zap.Logger
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/admin/login and returns an access token.
func (h *AdminHandler) Login(c echo.Context) error {
	if !h.Cfg.AdminEnabled() {
		return fail(c, http.StatusServiceUnavailable, "Admin access is not configured")
	}
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.Logger, err, "")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(h.Cfg.AdminEmail)) == 1
	// always run bcrypt so timing does not reveal whether the email matched
	passOK := utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password)
	if !emailOK || !passOK {
		h.Logger.Warn("admin login rejected", zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, email, utils.RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return writeError(c, h.Logger, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "access": tok})
}

// ListBookings handles GET /api/admin/bookings with optional status,
// villa_id and email filters.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	f := model.BookingFilter{
		Email:   strings.TrimSpace(c.QueryParam("email")),
		VillaID: strings.TrimSpace(c.QueryParam("villa_id")),
		Status:  strings.TrimSpace(c.QueryParam("status")),
	}
	bookings, err := h.Bookings.ListBookings(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.Logger, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": bookings})
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// UpdateStatus handles PATCH /api/admin/bookings/:id.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.Logger, err, "")
	}
	b, err := h.Bookings.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, h.Logger, err, "Booking not found")
	}
	h.Logger.Info("admin changed booking status",
		zap.String("admin", middleware.Subject(c)),
		zap.String("booking_id", b.ID),
		zap.String("status", b.Status))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "booking": b})
}

// ListTransactions handles GET /api/admin/transactions?booking_id=.
func (h *AdminHandler) ListTransactions(c echo.Context) error {
	txns, err := h.Payments.ListTransactions(c.Request().Context(), strings.TrimSpace(c.QueryParam("booking_id")))
	if err != nil {
		return writeError(c, h.Logger, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "transactions": txns})
}
