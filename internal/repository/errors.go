// Package repository persists villas, bookings and transactions.  The
// sentinel values below are shared by the SQL and in-memory stores so that
// the service layer and handlers can tell failure scenarios apart without
// knowing which backend is in use.
package repository

import "errors"

// ErrNotFound is returned when the requested villa, booking or
// transaction does not exist.  Handlers translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrUnavailable is returned when a confirmed booking already occupies
// part of the requested stay.  Handlers translate it into 409.
var ErrUnavailable = errors.New("villa is not available for the selected dates")

// ErrInvalidTransition is returned when a booking status change is not
// allowed, e.g. re-opening a cancelled booking.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrDuplicatePayment is returned when a payment reference is already
// attached to another booking or transaction.
var ErrDuplicatePayment = errors.New("payment reference already used")

// ErrPaymentNotFound is returned when a booking references a payment id
// that has no completed transaction.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrPaymentMismatch is returned when a prepaid amount differs from the
// booking total.
var ErrPaymentMismatch = errors.New("payment amount does not match booking total")
