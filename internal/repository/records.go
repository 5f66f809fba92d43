package repository

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/villa-booking/internal/model"
)

// prepareBooking fills server-side fields before an insert.  Both stores
// call it so bookings look the same regardless of backend.
func prepareBooking(b *model.Booking, now time.Time) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
	b.CreatedAt = now
	b.UpdatedAt = now
}

// prepareTransaction does the same for transactions.
func prepareTransaction(t *model.Transaction, now time.Time) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Currency == "" {
		t.Currency = model.DefaultCurrency
	}
	if t.Status == "" {
		t.Status = model.TxPending
	}
	if t.PaymentDetails == nil {
		t.PaymentDetails = model.JSONMap{}
	}
	t.CreatedAt = now
	t.UpdatedAt = now
}

// paidInFull reports whether a prepaid amount covers total to the cent.
func paidInFull(paid, total float64) bool {
	return math.Abs(paid-total) < 0.005
}
