package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer listens on booking.confirmed and appends a single-line record
// per confirmed booking to <LogDir>/booking.log.  The log is the stand-in
// for the confirmation mail the guest is promised.
type Consumer struct {
	URL    string
	LogDir string
	Logger *zap.Logger
}

// NewConsumer returns a consumer for the broker at url writing to logDir.
func NewConsumer(url, logDir string, logger *zap.Logger) *Consumer {
	if logDir == "" {
		logDir = "logs"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{URL: url, LogDir: logDir, Logger: logger}
}

// Run connects to RabbitMQ, declares the durable queue and consumes until
// ctx is cancelled.  Dial failures back off exponentially up to 30s; a
// dropped connection is re-established.  Messages that cannot be handled
// are rejected without requeue so a poison message cannot spin the loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("booking-consumer: failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.Logger.Warn("booking-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn("booking-consumer: set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(BookingQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(BookingQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				c.Logger.Error("booking-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends it to the booking log.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == "" {
		return errors.New("event without booking_id")
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join(c.LogDir, "booking.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLogLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	c.Logger.Info("booking confirmation recorded", zap.String("booking_id", ev.BookingID), zap.String("email", ev.Email))
	return nil
}

// FormatLogLine renders ev as one line of booking.log.
func FormatLogLine(ev BookingConfirmedEvent) string {
	return fmt.Sprintf("[%s] Booking confirmed | booking_id=%s | villa=%q | guest=%q | email=%s | stay=%s..%s (%d nights) | guests=%d | total=%.2f %s | payment_id=%s\n",
		ev.ConfirmedAt, ev.BookingID, ev.VillaName, ev.GuestName, ev.Email, ev.CheckIn, ev.CheckOut, ev.Nights, ev.Guests, ev.TotalAmount, ev.Currency, ev.PaymentID)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
