package repository

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/villa-booking/internal/model"
)

var transactionColumns = []interface{}{
	"id", "booking_id", "payment_id", "amount", "currency", "status",
	"payment_method", "payment_details", "created_at", "updated_at",
}

// CreateTransaction records a payment movement on its own, outside of a
// booking (standalone payments and refunds).
func (s *SQLStore) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	prepareTransaction(t, s.now())
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return s.insertTransaction(ctx, tx, t)
	})
	if isUniqueViolation(err) {
		return ErrDuplicatePayment
	}
	return err
}

func (s *SQLStore) insertTransaction(ctx context.Context, tx *sqlx.Tx, t *model.Transaction) error {
	details, err := t.PaymentDetails.Value()
	if err != nil {
		return err
	}
	var bookingID interface{}
	if t.BookingID != nil {
		bookingID = *t.BookingID
	}
	q, args, err := s.build(s.dialect.Insert(tableTransactions).Rows(goqu.Record{
		"id":              t.ID,
		"booking_id":      bookingID,
		"payment_id":      t.PaymentID,
		"amount":          t.Amount,
		"currency":        t.Currency,
		"status":          t.Status,
		"payment_method":  t.PaymentMethod,
		"payment_details": details,
		"created_at":      t.CreatedAt,
		"updated_at":      t.UpdatedAt,
	}).Prepared(true))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, q, args...)
	return err
}

// ListTransactions returns transactions newest first, optionally limited
// to one booking.
func (s *SQLStore) ListTransactions(ctx context.Context, bookingID string) ([]model.Transaction, error) {
	ds := s.dialect.From(tableTransactions).Select(transactionColumns...)
	if bookingID != "" {
		ds = ds.Where(goqu.C("booking_id").Eq(bookingID))
	}
	q, args, err := s.build(ds.Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).Prepared(true))
	if err != nil {
		return nil, err
	}
	out := []model.Transaction{}
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}
