package model

import "time"

// Booking statuses.  A booking starts PENDING when the guest paid through a
// separate payment call, or CONFIRMED when the booking call charged the
// guest itself.  Only CONFIRMED bookings block the calendar.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking records a guest's stay at a villa.
//
// Fields:
//
//	CheckIn/CheckOut – calendar days of arrival and departure.
//	TotalAmount      – nights × villa price at booking time.
//	PaymentID        – processor reference ("pay_…"), possibly from an earlier standalone payment.
//	Status           – pending, confirmed or cancelled.
type Booking struct {
	ID              string    `json:"id" db:"id"`                 // bookings.id
	VillaID         string    `json:"villa_id" db:"villa_id"`     // bookings.villa_id
	CheckIn         Date      `json:"check_in" db:"check_in"`     // bookings.check_in
	CheckOut        Date      `json:"check_out" db:"check_out"`   // bookings.check_out
	Guests          int       `json:"guests" db:"guests"`         // bookings.guests
	FirstName       string    `json:"first_name" db:"first_name"` // bookings.first_name
	LastName        string    `json:"last_name" db:"last_name"`   // bookings.last_name
	Email           string    `json:"email" db:"email"`           // bookings.email
	Phone           string    `json:"phone" db:"phone"`           // bookings.phone
	SpecialRequests string    `json:"special_requests,omitempty" db:"special_requests"`
	TotalAmount     float64   `json:"total_amount" db:"total_amount"` // bookings.total_amount
	PaymentID       string    `json:"payment_id" db:"payment_id"`     // bookings.payment_id
	Status          string    `json:"status" db:"status"`             // bookings.status
	CreatedAt       time.Time `json:"created_at" db:"created_at"`     // bookings.created_at
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`     // bookings.updated_at
}

// Nights is the length of the stay.
func (b Booking) Nights() int { return Nights(b.CheckIn, b.CheckOut) }

// GuestName joins first and last name for notifications.
func (b Booking) GuestName() string {
	if b.LastName == "" {
		return b.FirstName
	}
	return b.FirstName + " " + b.LastName
}

// BookingFilter narrows ListBookings.  Empty fields do not filter.
type BookingFilter struct {
	Email   string
	VillaID string
	Status  string
}

// ValidBookingStatus reports whether s is one of the known statuses.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// CanTransition encodes the allowed status changes: pending may become
// confirmed or cancelled, confirmed may be cancelled, cancelled is final.
func CanTransition(from, to string) bool {
	switch from {
	case BookingPending:
		return to == BookingConfirmed || to == BookingCancelled
	case BookingConfirmed:
		return to == BookingCancelled
	}
	return false
}
