package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/repository"
	"github.com/iliyamo/villa-booking/internal/service"
)

// fail writes the error envelope shared by every endpoint.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// writeError maps service and repository errors onto HTTP statuses.
// notFound is the message used for repository.ErrNotFound.
func writeError(c echo.Context, logger *zap.Logger, err error, notFound string) error {
	switch {
	case service.IsValidation(err):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrVillaNotFound):
		return fail(c, http.StatusNotFound, "Villa not found")
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, repository.ErrUnavailable):
		return fail(c, http.StatusConflict, "Villa is not available for the selected dates")
	case errors.Is(err, repository.ErrDuplicatePayment):
		return fail(c, http.StatusConflict, "Payment has already been used for another booking")
	case errors.Is(err, repository.ErrInvalidTransition):
		return fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrPaymentNotFound):
		return fail(c, http.StatusPaymentRequired, "Payment not found")
	case errors.Is(err, repository.ErrPaymentMismatch):
		return fail(c, http.StatusPaymentRequired, "Payment amount does not match total_amount")
	case errors.Is(err, service.ErrPaymentFailed):
		return fail(c, http.StatusPaymentRequired, "Payment processing failed")
	}
	logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "Internal server error")
}

// HTTPErrorHandler renders framework errors (unknown route, 405, bad body)
// in the same envelope as handler errors.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		} else {
			logger.Error("unhandled error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = fail(c, status, msg)
	}
}
