// Package service holds the booking and payment use cases.  Handlers call
// into it; it calls into a Store, a payment.Processor and an event
// Publisher, all of which are interfaces so tests can substitute them.
package service

import (
	"errors"
	"strings"
)

var (
	// ErrVillaNotFound is returned when a booking or quote names an unknown villa.
	ErrVillaNotFound = errors.New("villa not found")
	// ErrPaymentFailed wraps a processor error.
	ErrPaymentFailed = errors.New("payment failed")
)

// ValidationError reports input that fails a business rule.  Message is
// safe to show to the guest.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// MissingFieldsError lists required request fields that were absent.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// IsValidation reports whether err is a ValidationError or MissingFieldsError.
func IsValidation(err error) bool {
	var ve *ValidationError
	var mf *MissingFieldsError
	return errors.As(err, &ve) || errors.As(err, &mf)
}
