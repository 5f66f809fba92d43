package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/service"
)

// PaymentHandler serves the standalone mock payment endpoint.
type PaymentHandler struct {
	Payments *service.PaymentService
	Logger   *zap.Logger
}

type paymentReq struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency" validate:"omitempty,len=3"`
	PaymentMethod string  `json:"payment_method" validate:"max=32"`
}

// Process handles POST /api/payment.
func (h *PaymentHandler) Process(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Amount <= 0 {
		return fail(c, http.StatusBadRequest, "Amount is required")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.Logger, err, "")
	}
	r, err := h.Payments.Process(c.Request().Context(), service.PaymentRequest{
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, h.Logger, err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"paymentId": r.PaymentID,
		"amount":    r.Amount,
		"currency":  r.Currency,
		"status":    r.Status,
		"timestamp": r.Timestamp.Format(time.RFC3339Nano),
	})
}
