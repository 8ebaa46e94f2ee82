package dispatcher

import (
	"context"
	"fmt"

	"lodgebook/pkg/events"
	"lodgebook/pkg/kafka"
	"lodgebook/pkg/logger"
)

// Notification is one outbound message to a guest.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// Notifier delivers notifications over a concrete channel (email, SMS).
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
}

// Dispatcher turns booking lifecycle events into guest notifications. It is
// the consuming end of the booking events topic; delivery failures propagate
// so the consumer's retry and DLQ policy applies.
type Dispatcher struct {
	notifier Notifier
	log      *logger.Logger
}

func New(notifier Notifier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		log:      log,
	}
}

// Handle is the consumer's message handler. Events with no recipient or an
// unknown type are skipped, not retried.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}

	if event.RequesterContact == "" {
		d.log.Warn("Booking event has no requester contact, skipping",
			"booking_id", event.BookingID,
			"type", event.Type,
		)
		return nil
	}

	notification, ok := buildNotification(event)
	if !ok {
		d.log.Warn("Unknown booking event type, skipping",
			"booking_id", event.BookingID,
			"type", event.Type,
		)
		return nil
	}

	return d.notifier.Send(ctx, notification)
}

func buildNotification(event events.BookingEvent) (Notification, bool) {
	switch event.Type {
	case events.TypeBookingConfirmed:
		return Notification{
			Recipient: event.RequesterContact,
			Subject:   "Your booking is confirmed",
			Body: fmt.Sprintf(
				"Booking %s is confirmed. We look forward to hosting you.",
				event.BookingID,
			),
		}, true
	case events.TypeBookingCanceled:
		return Notification{
			Recipient: event.RequesterContact,
			Subject:   "Your booking was canceled",
			Body: fmt.Sprintf(
				"Booking %s has been canceled. Any completed payment will be refunded.",
				event.BookingID,
			),
		}, true
	default:
		return Notification{}, false
	}
}

// LogNotifier writes notifications to the service log. It stands in for a
// real delivery channel until an email or SMS provider is integrated.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, notification Notification) error {
	n.log.Info("Notification delivered",
		"recipient", notification.Recipient,
		"subject", notification.Subject,
		"body", notification.Body,
	)
	return nil
}
