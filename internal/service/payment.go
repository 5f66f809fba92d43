package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/model"
	"github.com/iliyamo/villa-booking/internal/payment"
)

// PaymentRequest is a standalone charge made before the booking is submitted.
type PaymentRequest struct {
	Amount        float64
	Currency      string
	PaymentMethod string
}

// PaymentService charges guests outside of the booking flow.
type PaymentService struct {
	store    Store
	payments payment.Processor
	logger   *zap.Logger
	currency string
}

// NewPaymentService wires the service.
func NewPaymentService(store Store, payments payment.Processor, logger *zap.Logger, currency string) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &PaymentService{store: store, payments: payments, logger: logger, currency: currency}
}

// Process charges the processor and records a completed transaction with
// no booking attached.  The returned receipt's PaymentID can then be sent
// along with the booking.
func (s *PaymentService) Process(ctx context.Context, req PaymentRequest) (payment.Receipt, error) {
	if req.Amount <= 0 {
		return payment.Receipt{}, invalid("Amount is required")
	}
	cur := req.Currency
	if cur == "" {
		cur = s.currency
	}
	r, err := s.payments.Charge(ctx, payment.ChargeRequest{Amount: req.Amount, Currency: cur, Method: req.PaymentMethod})
	if err != nil {
		return payment.Receipt{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	t := &model.Transaction{
		PaymentID:     r.PaymentID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Status:        model.TxCompleted,
		PaymentMethod: r.Method,
		PaymentDetails: model.JSONMap{
			"processor": "mock",
			"paid_at":   r.Timestamp.Format(time.RFC3339),
		},
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return payment.Receipt{}, fmt.Errorf("record transaction: %w", err)
	}
	return r, nil
}

// ListTransactions returns transactions, optionally for one booking.
func (s *PaymentService) ListTransactions(ctx context.Context, bookingID string) ([]model.Transaction, error) {
	return s.store.ListTransactions(ctx, bookingID)
}
