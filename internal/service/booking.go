package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/villa-booking/internal/model"
	"github.com/iliyamo/villa-booking/internal/payment"
	"github.com/iliyamo/villa-booking/internal/queue"
	"github.com/iliyamo/villa-booking/internal/repository"
)

// Store is the persistence contract the services depend on.  Both
// repository.SQLStore and repository.MemoryStore satisfy it.
type Store interface {
	Driver() string
	Ping(ctx context.Context) error
	ListVillas(ctx context.Context) ([]model.Villa, error)
	GetVilla(ctx context.Context, id string) (model.Villa, error)
	CreateVilla(ctx context.Context, v *model.Villa) error
	CountVillas(ctx context.Context) (int, error)
	IsAvailable(ctx context.Context, villaID string, checkIn, checkOut model.Date) (bool, error)
	CreateBooking(ctx context.Context, b *model.Booking, txn *model.Transaction) error
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) (model.Booking, error)
	CreateTransaction(ctx context.Context, t *model.Transaction) error
	ListTransactions(ctx context.Context, bookingID string) ([]model.Transaction, error)
}

// Publisher announces confirmed bookings.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// amountTolerance absorbs float rounding between the client's total and ours.
const amountTolerance = 0.005

// BookingInput is what a guest submits.  Dates are already parsed; PaymentID
// and Status are optional and only honoured when the guest paid through
// the standalone payment endpoint first.
type BookingInput struct {
	VillaID         string
	CheckIn         model.Date
	CheckOut        model.Date
	Guests          int
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	SpecialRequests string
	TotalAmount     float64
	PaymentID       string
	PaymentMethod   string
	Status          string
}

// BookingResult is the outcome of a successful CreateBooking.
type BookingResult struct {
	Booking     model.Booking
	Transaction *model.Transaction
}

// Quote is the price of a stay.
type Quote struct {
	VillaID     string  `json:"villa_id"`
	CheckIn     string  `json:"check_in"`
	CheckOut    string  `json:"check_out"`
	Nights      int     `json:"nights"`
	Price       float64 `json:"price"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
}

// BookingService implements the booking submission path.
type BookingService struct {
	store    Store
	payments payment.Processor
	events   Publisher
	logger   *zap.Logger
	currency string
	now      func() time.Time
}

// NewBookingService wires the service.  A nil publisher or logger is
// replaced by a no-op.
func NewBookingService(store Store, payments payment.Processor, events Publisher, logger *zap.Logger, currency string) *BookingService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &BookingService{
		store:    store,
		payments: payments,
		events:   events,
		logger:   logger,
		currency: currency,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *BookingService) villa(ctx context.Context, id string) (model.Villa, error) {
	v, err := s.store.GetVilla(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Villa{}, ErrVillaNotFound
	}
	return v, err
}

func (s *BookingService) checkDates(in, out model.Date) error {
	if in.IsZero() || out.IsZero() {
		return invalid("check_in and check_out are required")
	}
	if !out.After(in.Time) {
		return invalid("check_out must be after check_in")
	}
	if in.Before(model.NewDate(s.now()).Time) {
		return invalid("check_in cannot be in the past")
	}
	return nil
}

// Quote prices a stay without reserving anything.
func (s *BookingService) Quote(ctx context.Context, villaID string, in, out model.Date) (Quote, error) {
	v, err := s.villa(ctx, villaID)
	if err != nil {
		return Quote{}, err
	}
	if err := s.checkDates(in, out); err != nil {
		return Quote{}, err
	}
	nights := model.Nights(in, out)
	return Quote{
		VillaID:     v.ID,
		CheckIn:     in.String(),
		CheckOut:    out.String(),
		Nights:      nights,
		Price:       v.Price,
		TotalAmount: round2(float64(nights) * v.Price),
		Currency:    s.currency,
	}, nil
}

// CheckAvailability reports whether no confirmed booking overlaps the stay.
func (s *BookingService) CheckAvailability(ctx context.Context, villaID string, in, out model.Date) (bool, error) {
	if _, err := s.villa(ctx, villaID); err != nil {
		return false, err
	}
	if in.IsZero() || out.IsZero() {
		return false, invalid("check_in and check_out are required")
	}
	if !out.After(in.Time) {
		return false, invalid("check_out must be after check_in")
	}
	return s.store.IsAvailable(ctx, villaID, in, out)
}

// CreateBooking validates the request against the villa, charges the guest
// when no prior payment is referenced, and persists the booking with its
// transaction.  If the dates were taken between the pre-check and the
// insert, the charge is refunded and ErrUnavailable returned.
func (s *BookingService) CreateBooking(ctx context.Context, in BookingInput) (BookingResult, error) {
	v, err := s.villa(ctx, in.VillaID)
	if err != nil {
		return BookingResult{}, err
	}
	if err := s.checkDates(in.CheckIn, in.CheckOut); err != nil {
		return BookingResult{}, err
	}
	if in.Guests < 1 || in.Guests > v.MaxGuests {
		return BookingResult{}, &ValidationError{Message: fmt.Sprintf("guests must be between 1 and %d", v.MaxGuests)}
	}
	nights := model.Nights(in.CheckIn, in.CheckOut)
	expected := round2(float64(nights) * v.Price)
	if math.Abs(in.TotalAmount-expected) > amountTolerance {
		return BookingResult{}, &ValidationError{Message: fmt.Sprintf("total_amount must be %.2f for %d nights", expected, nights)}
	}
	if in.Status != "" && !model.ValidBookingStatus(in.Status) {
		return BookingResult{}, invalid("invalid booking status")
	}

	ok, err := s.store.IsAvailable(ctx, v.ID, in.CheckIn, in.CheckOut)
	if err != nil {
		return BookingResult{}, err
	}
	if !ok {
		return BookingResult{}, repository.ErrUnavailable
	}

	b := &model.Booking{
		VillaID:         v.ID,
		CheckIn:         in.CheckIn,
		CheckOut:        in.CheckOut,
		Guests:          in.Guests,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           in.Email,
		Phone:           strings.TrimSpace(in.Phone),
		SpecialRequests: in.SpecialRequests,
		TotalAmount:     expected,
	}

	var txn *model.Transaction
	var receipt payment.Receipt
	if in.PaymentID != "" {
		// the store checks the id against a completed, unclaimed payment
		b.PaymentID = in.PaymentID
		b.Status = in.Status
		if b.Status == "" {
			b.Status = model.BookingPending
		}
	} else {
		receipt, err = s.payments.Charge(ctx, payment.ChargeRequest{
			Amount:      expected,
			Currency:    s.currency,
			Method:      in.PaymentMethod,
			Description: fmt.Sprintf("%s, %d nights", v.Name, nights),
		})
		if err != nil {
			s.logger.Warn("booking charge failed", zap.String("villa_id", v.ID), zap.Error(err))
			return BookingResult{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		b.PaymentID = receipt.PaymentID
		b.Status = model.BookingConfirmed
		txn = &model.Transaction{
			PaymentID:     receipt.PaymentID,
			Amount:        receipt.Amount,
			Currency:      receipt.Currency,
			Status:        model.TxCompleted,
			PaymentMethod: receipt.Method,
			PaymentDetails: model.JSONMap{
				"processor": "mock",
				"paid_at":   receipt.Timestamp.Format(time.RFC3339),
			},
		}
	}

	if err := s.store.CreateBooking(ctx, b, txn); err != nil {
		if txn != nil {
			s.refund(ctx, receipt, err)
		}
		return BookingResult{}, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("villa_id", b.VillaID),
		zap.String("status", b.Status),
		zap.String("payment_id", b.PaymentID))

	if b.Status == model.BookingConfirmed {
		s.publish(ctx, *b, v)
	}
	return BookingResult{Booking: *b, Transaction: txn}, nil
}

// refund reverses a charge whose booking could not be stored and records
// the refund.  Failures are logged; the caller already has an error to return.
func (s *BookingService) refund(ctx context.Context, charged payment.Receipt, cause error) {
	// The request context may already be done; the refund must still go through.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	r, err := s.payments.Refund(rctx, charged.PaymentID, charged.Amount)
	if err != nil {
		s.logger.Error("refund failed", zap.String("payment_id", charged.PaymentID), zap.Error(err))
		return
	}
	t := &model.Transaction{
		PaymentID:     r.PaymentID,
		Amount:        charged.Amount,
		Currency:      charged.Currency,
		Status:        model.TxRefunded,
		PaymentMethod: charged.Method,
		PaymentDetails: model.JSONMap{
			"processor": "mock",
			"reason":    cause.Error(),
		},
	}
	if err := s.store.CreateTransaction(rctx, t); err != nil {
		s.logger.Error("record refund failed", zap.String("payment_id", r.PaymentID), zap.Error(err))
		return
	}
	s.logger.Info("charge refunded", zap.String("payment_id", r.PaymentID), zap.NamedError("cause", cause))
}

func (s *BookingService) publish(ctx context.Context, b model.Booking, v model.Villa) {
	ev := queue.NewBookingConfirmedEvent(b, v, s.currency, s.now().Format(time.RFC3339))
	if err := s.events.PublishBookingConfirmed(ctx, ev); err != nil {
		s.logger.Warn("publish booking.confirmed failed", zap.String("booking_id", b.ID), zap.Error(err))
	}
}

// GetBooking fetches a booking by id.
func (s *BookingService) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListBookings returns bookings matching f, newest first.
func (s *BookingService) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	if f.Status != "" && !model.ValidBookingStatus(f.Status) {
		return nil, invalid("invalid booking status")
	}
	return s.store.ListBookings(ctx, f)
}

// UpdateStatus moves a booking to status and announces confirmations.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) (model.Booking, error) {
	if !model.ValidBookingStatus(status) {
		return model.Booking{}, invalid("invalid booking status")
	}
	b, err := s.store.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		return model.Booking{}, err
	}
	s.logger.Info("booking status changed", zap.String("booking_id", b.ID), zap.String("status", b.Status))
	if b.Status == model.BookingConfirmed {
		v, err := s.store.GetVilla(ctx, b.VillaID)
		if err != nil {
			s.logger.Warn("load villa for event failed", zap.String("villa_id", b.VillaID), zap.Error(err))
		}
		s.publish(ctx, b, v)
	}
	return b, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
