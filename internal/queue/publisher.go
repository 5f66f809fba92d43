package queue

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends BookingConfirmedEvents to RabbitMQ.  A connection is
// dialled per publish: confirmations are rare and this keeps the publisher
// free of reconnect state.  Errors are logged and returned so the caller
// can choose to ignore them.
type Publisher struct {
	URL    string
	Logger *zap.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{URL: url, Logger: logger}
}

// PublishBookingConfirmed publishes event to the booking.confirmed queue.
// Messages are marked as persistent.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Logger.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Logger.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		BookingQueueName, // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		p.Logger.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.Logger.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",               // default exchange
		BookingQueueName, // routing key = queue name
		false,            // mandatory
		false,            // immediate
		pub,
	); err != nil {
		p.Logger.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	p.Logger.Debug("rabbitmq: booking confirmed published", zap.String("booking_id", event.BookingID))
	return nil
}

// NopPublisher drops events.  Used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBookingConfirmed(context.Context, BookingConfirmedEvent) error { return nil }
