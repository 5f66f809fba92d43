package model

import "time"

// Transaction statuses.
const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
	TxRefunded  = "refunded"
)

// DefaultCurrency is used when neither the request nor the configuration
// names one.
const DefaultCurrency = "INR"

// Transaction is a payment movement.  BookingID is nil for payments made
// through the standalone payment endpoint before a booking exists.
type Transaction struct {
	ID             string    `json:"id" db:"id"`                         // transactions.id
	BookingID      *string   `json:"booking_id" db:"booking_id"`         // transactions.booking_id (nullable)
	PaymentID      string    `json:"payment_id" db:"payment_id"`         // transactions.payment_id
	Amount         float64   `json:"amount" db:"amount"`                 // transactions.amount
	Currency       string    `json:"currency" db:"currency"`             // transactions.currency
	Status         string    `json:"status" db:"status"`                 // transactions.status
	PaymentMethod  string    `json:"payment_method" db:"payment_method"` // transactions.payment_method
	PaymentDetails JSONMap   `json:"payment_details" db:"payment_details"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // transactions.created_at
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"` // transactions.updated_at
}
