// Package payment fabricates payment confirmations.  There is no real
// processor behind it: a charge waits a short while, as a gateway round
// trip would, and returns a random reference.
package payment

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/model"
)

// ErrInvalidAmount is returned for zero or negative charges.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// ChargeRequest describes a single charge.
type ChargeRequest struct {
	Amount      float64
	Currency    string
	Method      string
	Description string
}

// Receipt is what the processor hands back.
type Receipt struct {
	PaymentID string    `json:"paymentId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Method    string    `json:"payment_method"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Processor charges and refunds guests.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (Receipt, error)
	Refund(ctx context.Context, paymentID string, amount float64) (Receipt, error)
}

// DefaultMethod is recorded when the client does not name one.
const DefaultMethod = "credit_card"

const (
	idPrefix   = "pay_"
	idLength   = 13
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// MockProcessor approves every valid charge after Delay.
type MockProcessor struct {
	Delay  time.Duration
	Logger *zap.Logger
	now    func() time.Time
}

// NewMockProcessor returns a processor that waits delay per call.
func NewMockProcessor(delay time.Duration, logger *zap.Logger) *MockProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockProcessor{Delay: delay, Logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Charge simulates the gateway round trip and returns a completed receipt.
func (p *MockProcessor) Charge(ctx context.Context, req ChargeRequest) (Receipt, error) {
	if req.Amount <= 0 {
		return Receipt{}, ErrInvalidAmount
	}
	if err := p.wait(ctx); err != nil {
		return Receipt{}, err
	}
	id, err := NewPaymentID()
	if err != nil {
		return Receipt{}, err
	}
	r := Receipt{
		PaymentID: id,
		Amount:    req.Amount,
		Currency:  orDefault(req.Currency, model.DefaultCurrency),
		Method:    orDefault(req.Method, DefaultMethod),
		Status:    model.TxCompleted,
		Timestamp: p.now(),
	}
	p.Logger.Info("payment charged",
		zap.String("payment_id", r.PaymentID),
		zap.Float64("amount", r.Amount),
		zap.String("currency", r.Currency))
	return r, nil
}

// Refund returns a refunded receipt for an earlier charge.
func (p *MockProcessor) Refund(ctx context.Context, paymentID string, amount float64) (Receipt, error) {
	if paymentID == "" {
		return Receipt{}, errors.New("payment id is required")
	}
	if err := p.wait(ctx); err != nil {
		return Receipt{}, err
	}
	p.Logger.Info("payment refunded", zap.String("payment_id", paymentID), zap.Float64("amount", amount))
	return Receipt{
		PaymentID: paymentID,
		Amount:    amount,
		Status:    model.TxRefunded,
		Timestamp: p.now(),
	}, nil
}

func (p *MockProcessor) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NewPaymentID returns "pay_" followed by 13 random base-36 characters.
func NewPaymentID() (string, error) {
	buf := make([]byte, idLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return idPrefix + string(buf), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
