// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/iliyamo/villa-booking/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BookingQueueName is the durable queue confirmed bookings are sent to.
const BookingQueueName = "booking.confirmed"

// BookingConfirmedEvent is published when a booking reaches the confirmed
// state.  It carries enough for a consumer to notify the guest without
// querying the primary database.
type BookingConfirmedEvent struct {
	BookingID   string  `json:"booking_id"`
	VillaID     string  `json:"villa_id"`
	VillaName   string  `json:"villa_name"`
	GuestName   string  `json:"guest_name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	CheckIn     string  `json:"check_in"`
	CheckOut    string  `json:"check_out"`
	Nights      int     `json:"nights"`
	Guests      int     `json:"guests"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
	PaymentID   string  `json:"payment_id"`
	ConfirmedAt string  `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event for b at villa v.
func NewBookingConfirmedEvent(b model.Booking, v model.Villa, currency, confirmedAt string) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:   b.ID,
		VillaID:     b.VillaID,
		VillaName:   v.Name,
		GuestName:   b.GuestName(),
		Email:       b.Email,
		Phone:       b.Phone,
		CheckIn:     b.CheckIn.String(),
		CheckOut:    b.CheckOut.String(),
		Nights:      b.Nights(),
		Guests:      b.Guests,
		TotalAmount: b.TotalAmount,
		Currency:    currency,
		PaymentID:   b.PaymentID,
		ConfirmedAt: confirmedAt,
	}
}
