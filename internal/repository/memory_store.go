package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/villa-booking/internal/model"
)

// MemoryStore keeps everything in process.  It backs the service when no
// database is configured, so the site still accepts bookings in a demo or
// local setup, and it doubles as the store of the service tests.  Data is
// lost on restart.
type MemoryStore struct {
	mu           sync.Mutex
	villas       []model.Villa
	bookings     []model.Booking
	transactions []model.Transaction
	now          func() time.Time
}

// NewMemoryStore returns an empty store.  Pass villas to pre-populate it.
func NewMemoryStore(villas ...model.Villa) *MemoryStore {
	m := &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
	for _, v := range villas {
		v := v
		_ = m.CreateVilla(context.Background(), &v)
	}
	return m
}

// Driver reports the backend name for health output.
func (m *MemoryStore) Driver() string { return "memory" }

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) ListVillas(context.Context) ([]model.Villa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Villa, len(m.villas))
	copy(out, m.villas)
	return out, nil
}

func (m *MemoryStore) GetVilla(_ context.Context, id string) (model.Villa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.villas {
		if v.ID == id {
			return v, nil
		}
	}
	return model.Villa{}, ErrNotFound
}

func (m *MemoryStore) CreateVilla(_ context.Context, v *model.Villa) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = m.now()
	}
	m.villas = append(m.villas, *v)
	return nil
}

func (m *MemoryStore) CountVillas(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.villas), nil
}

func (m *MemoryStore) IsAvailable(_ context.Context, villaID string, checkIn, checkOut model.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.overlapsLocked(villaID, checkIn, checkOut, ""), nil
}

func (m *MemoryStore) overlapsLocked(villaID string, in, out model.Date, excludeID string) bool {
	for _, b := range m.bookings {
		if b.VillaID != villaID || b.Status != model.BookingConfirmed || b.ID == excludeID {
			continue
		}
		if model.Overlaps(in, out, b.CheckIn, b.CheckOut) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) hasVillaLocked(id string) bool {
	for _, v := range m.villas {
		if v.ID == id {
			return true
		}
	}
	return false
}

func (m *MemoryStore) paymentUsedLocked(paymentID, status string) bool {
	for _, t := range m.transactions {
		if t.PaymentID == paymentID && t.Status == status {
			return true
		}
	}
	return false
}

// CreateBooking holds the store lock across the overlap check and the
// inserts, which gives the same guarantee as the SQL row lock.
func (m *MemoryStore) CreateBooking(_ context.Context, b *model.Booking, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasVillaLocked(b.VillaID) {
		return ErrNotFound
	}
	now := m.now()
	prepareBooking(b, now)
	if b.Status != model.BookingCancelled && m.overlapsLocked(b.VillaID, b.CheckIn, b.CheckOut, "") {
		return ErrUnavailable
	}
	for _, existing := range m.bookings {
		if existing.PaymentID == b.PaymentID {
			return ErrDuplicatePayment
		}
	}
	if txn != nil {
		prepareTransaction(txn, now)
		if m.paymentUsedLocked(txn.PaymentID, txn.Status) {
			return ErrDuplicatePayment
		}
		id := b.ID
		txn.BookingID = &id
		m.transactions = append(m.transactions, *txn)
	} else if b.PaymentID != "" {
		prepaid, err := m.prepaidLocked(b)
		if err != nil {
			return err
		}
		id := b.ID
		prepaid.BookingID = &id
		prepaid.UpdatedAt = now
	}
	m.bookings = append(m.bookings, *b)
	return nil
}

// prepaidLocked returns the unclaimed completed transaction paying for b.
func (m *MemoryStore) prepaidLocked(b *model.Booking) (*model.Transaction, error) {
	for i := range m.transactions {
		t := &m.transactions[i]
		if t.PaymentID != b.PaymentID || t.Status != model.TxCompleted {
			continue
		}
		if t.BookingID != nil {
			return nil, ErrDuplicatePayment
		}
		if !paidInFull(t.Amount, b.TotalAmount) {
			return nil, ErrPaymentMismatch
		}
		return t, nil
	}
	return nil, ErrPaymentNotFound
}

func (m *MemoryStore) GetBooking(_ context.Context, id string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Booking{}, ErrNotFound
}

func (m *MemoryStore) ListBookings(_ context.Context, f model.BookingFilter) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(f.Email))
	out := []model.Booking{}
	for i := len(m.bookings) - 1; i >= 0; i-- {
		b := m.bookings[i]
		if email != "" && b.Email != email {
			continue
		}
		if f.VillaID != "" && b.VillaID != f.VillaID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateBookingStatus(_ context.Context, id, status string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		b := &m.bookings[i]
		if b.ID != id {
			continue
		}
		if !model.CanTransition(b.Status, status) {
			return model.Booking{}, ErrInvalidTransition
		}
		if status == model.BookingConfirmed && m.overlapsLocked(b.VillaID, b.CheckIn, b.CheckOut, b.ID) {
			return model.Booking{}, ErrUnavailable
		}
		b.Status = status
		b.UpdatedAt = m.now()
		return *b, nil
	}
	return model.Booking{}, ErrNotFound
}

func (m *MemoryStore) CreateTransaction(_ context.Context, t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prepareTransaction(t, m.now())
	if m.paymentUsedLocked(t.PaymentID, t.Status) {
		return ErrDuplicatePayment
	}
	m.transactions = append(m.transactions, *t)
	return nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, bookingID string) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Transaction{}
	for i := len(m.transactions) - 1; i >= 0; i-- {
		t := m.transactions[i]
		if bookingID != "" && (t.BookingID == nil || *t.BookingID != bookingID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
