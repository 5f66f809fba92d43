package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/villa-booking/internal/model"
)

var bookingColumns = []interface{}{
	"id", "villa_id", "check_in", "check_out", "guests", "first_name", "last_name",
	"email", "phone", "special_requests", "total_amount", "payment_id", "status",
	"created_at", "updated_at",
}

// overlapCondition selects confirmed bookings of villaID touching the
// inclusive range [in, out].
func overlapCondition(villaID string, in, out model.Date) exp.Expression {
	return goqu.And(
		goqu.C("villa_id").Eq(villaID),
		goqu.C("status").Eq(model.BookingConfirmed),
		goqu.C("check_in").Lte(out.String()),
		goqu.C("check_out").Gte(in.String()),
	)
}

// IsAvailable reports whether no confirmed booking of the villa overlaps
// the requested stay.
func (s *SQLStore) IsAvailable(ctx context.Context, villaID string, checkIn, checkOut model.Date) (bool, error) {
	n, err := s.countOverlapping(ctx, s.db, villaID, checkIn, checkOut, "")
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// countOverlapping counts conflicting bookings.  excludeID skips the
// booking being confirmed so it does not conflict with itself.
func (s *SQLStore) countOverlapping(ctx context.Context, q sqlx.QueryerContext, villaID string, in, out model.Date, excludeID string) (int, error) {
	where := []exp.Expression{overlapCondition(villaID, in, out)}
	if excludeID != "" {
		where = append(where, goqu.C("id").Neq(excludeID))
	}
	query, args, err := s.build(s.dialect.From(tableBookings).
		Select(goqu.COUNT("*")).
		Where(where...).
		Prepared(true))
	if err != nil {
		return 0, err
	}
	var n int
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// lockVilla takes a row lock on the villa so that concurrent bookings of
// the same villa serialise their overlap check and insert.  It returns
// ErrNotFound when the villa does not exist.
func (s *SQLStore) lockVilla(ctx context.Context, tx *sqlx.Tx, villaID string) error {
	ds := s.dialect.From(tableVillas).Select("id").Where(goqu.C("id").Eq(villaID))
	if s.supportsRowLocks() {
		ds = ds.ForUpdate(exp.Wait)
	}
	q, args, err := s.build(ds.Prepared(true))
	if err != nil {
		return err
	}
	var id string
	if err := tx.GetContext(ctx, &id, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// CreateBooking persists b, and txn when non-nil, in one transaction.
// The villa row is locked and the overlap check repeated inside the
// transaction so two guests cannot both win the same dates.  Without txn,
// b.PaymentID must name an unclaimed completed transaction for the full
// total; that transaction is attached to the new booking.  New IDs and
// timestamps are filled in on b and txn.
func (s *SQLStore) CreateBooking(ctx context.Context, b *model.Booking, txn *model.Transaction) error {
	prepareBooking(b, s.now())
	if txn != nil {
		prepareTransaction(txn, s.now())
		txn.BookingID = &b.ID
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lockVilla(ctx, tx, b.VillaID); err != nil {
			return err
		}
		if b.Status != model.BookingCancelled {
			n, err := s.countOverlapping(ctx, tx, b.VillaID, b.CheckIn, b.CheckOut, "")
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrUnavailable
			}
		}
		var prepaidID string
		if txn == nil && b.PaymentID != "" {
			id, err := s.prepaidTransaction(ctx, tx, b)
			if err != nil {
				return err
			}
			prepaidID = id
		}
		q, args, err := s.build(s.dialect.Insert(tableBookings).Rows(bookingRecord(b)).Prepared(true))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
		if txn != nil {
			return s.insertTransaction(ctx, tx, txn)
		}
		if prepaidID != "" {
			return s.linkTransaction(ctx, tx, prepaidID, b.ID)
		}
		return nil
	})
	if isUniqueViolation(err) {
		return ErrDuplicatePayment
	}
	return err
}

// GetBooking fetches a booking by id.
func (s *SQLStore) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	return s.getBooking(ctx, s.db, id, false)
}

func (s *SQLStore) getBooking(ctx context.Context, q sqlx.QueryerContext, id string, forUpdate bool) (model.Booking, error) {
	ds := s.dialect.From(tableBookings).Select(bookingColumns...).Where(goqu.C("id").Eq(id)).Limit(1)
	if forUpdate && s.supportsRowLocks() {
		ds = ds.ForUpdate(exp.Wait)
	}
	query, args, err := s.build(ds.Prepared(true))
	if err != nil {
		return model.Booking{}, err
	}
	var b model.Booking
	if err := sqlx.GetContext(ctx, q, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, ErrNotFound
		}
		return model.Booking{}, err
	}
	return b, nil
}

// ListBookings returns bookings matching f, newest first.  Email matching
// is case-insensitive.
func (s *SQLStore) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	ds := s.dialect.From(tableBookings).Select(bookingColumns...)
	if f.Email != "" {
		ds = ds.Where(goqu.Func("LOWER", goqu.C("email")).Eq(strings.ToLower(strings.TrimSpace(f.Email))))
	}
	if f.VillaID != "" {
		ds = ds.Where(goqu.C("villa_id").Eq(f.VillaID))
	}
	if f.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(f.Status))
	}
	q, args, err := s.build(ds.Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).Prepared(true))
	if err != nil {
		return nil, err
	}
	out := []model.Booking{}
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBookingStatus moves a booking to status.  Confirming re-checks the
// calendar under the villa lock; disallowed transitions return
// ErrInvalidTransition.  The updated booking is returned.
func (s *SQLStore) UpdateBookingStatus(ctx context.Context, id, status string) (model.Booking, error) {
	var updated model.Booking
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		// Locking reads first: on MySQL the first plain read fixes the
		// snapshot the overlap count sees.
		current, err := s.getBooking(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if !model.CanTransition(current.Status, status) {
			return ErrInvalidTransition
		}
		if status == model.BookingConfirmed {
			if err := s.lockVilla(ctx, tx, current.VillaID); err != nil {
				return err
			}
			n, err := s.countOverlapping(ctx, tx, current.VillaID, current.CheckIn, current.CheckOut, current.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrUnavailable
			}
		}
		now := s.now()
		q, args, err := s.build(s.dialect.Update(tableBookings).
			Set(goqu.Record{"status": status, "updated_at": now}).
			Where(goqu.C("id").Eq(id), goqu.C("status").Eq(current.Status)).
			Prepared(true))
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			// status changed under us
			return ErrInvalidTransition
		}
		current.Status = status
		current.UpdatedAt = now
		updated = current
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return updated, nil
}

func bookingRecord(b *model.Booking) goqu.Record {
	return goqu.Record{
		"id":               b.ID,
		"villa_id":         b.VillaID,
		"check_in":         b.CheckIn.String(),
		"check_out":        b.CheckOut.String(),
		"guests":           b.Guests,
		"first_name":       b.FirstName,
		"last_name":        b.LastName,
		"email":            b.Email,
		"phone":            b.Phone,
		"special_requests": b.SpecialRequests,
		"total_amount":     b.TotalAmount,
		"payment_id":       b.PaymentID,
		"status":           b.Status,
		"created_at":       b.CreatedAt,
		"updated_at":       b.UpdatedAt,
	}
}

// prepaidTransaction finds the completed transaction behind b.PaymentID,
// locking it where the dialect allows, and returns its id.
func (s *SQLStore) prepaidTransaction(ctx context.Context, tx *sqlx.Tx, b *model.Booking) (string, error) {
	ds := s.dialect.From(tableTransactions).
		Select("id", "booking_id", "amount").
		Where(goqu.C("payment_id").Eq(b.PaymentID), goqu.C("status").Eq(model.TxCompleted)).
		Limit(1)
	if s.supportsRowLocks() {
		ds = ds.ForUpdate(exp.Wait)
	}
	q, args, err := s.build(ds.Prepared(true))
	if err != nil {
		return "", err
	}
	var row struct {
		ID        string         `db:"id"`
		BookingID sql.NullString `db:"booking_id"`
		Amount    float64        `db:"amount"`
	}
	if err := tx.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrPaymentNotFound
		}
		return "", err
	}
	if row.BookingID.Valid {
		return "", ErrDuplicatePayment
	}
	if !paidInFull(row.Amount, b.TotalAmount) {
		return "", ErrPaymentMismatch
	}
	return row.ID, nil
}

func (s *SQLStore) linkTransaction(ctx context.Context, tx *sqlx.Tx, txnID, bookingID string) error {
	q, args, err := s.build(s.dialect.Update(tableTransactions).
		Set(goqu.Record{"booking_id": bookingID, "updated_at": s.now()}).
		Where(goqu.C("id").Eq(txnID)).
		Prepared(true))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, q, args...)
	return err
}
