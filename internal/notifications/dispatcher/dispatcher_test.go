package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"lodgebook/pkg/events"
	"lodgebook/pkg/kafka"
	"lodgebook/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	sendFunc func(ctx context.Context, n Notification) error
	sent     []Notification
}

func (m *mockNotifier) Send(ctx context.Context, n Notification) error {
	m.sent = append(m.sent, n)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, n)
	}
	return nil
}

func newTestDispatcher() (*Dispatcher, *mockNotifier) {
	notifier := &mockNotifier{}
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	return New(notifier, log), notifier
}

func eventMessage(t *testing.T, event events.BookingEvent) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage(event.BookingID, event.Type, "test", event)
	require.NoError(t, err)
	return msg
}

func TestHandleConfirmedEventNotifiesGuest(t *testing.T) {
	d, notifier := newTestDispatcher()

	err := d.Handle(context.Background(), eventMessage(t, events.BookingEvent{
		Type:             events.TypeBookingConfirmed,
		BookingID:        "booking-1",
		PropertyID:       "property-1",
		RequesterContact: "guest@example.com",
		OccurredAt:       time.Now().UTC(),
	}))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "guest@example.com", notifier.sent[0].Recipient)
	assert.Equal(t, "Your booking is confirmed", notifier.sent[0].Subject)
	assert.Contains(t, notifier.sent[0].Body, "booking-1")
}

func TestHandleCanceledEventNotifiesGuest(t *testing.T) {
	d, notifier := newTestDispatcher()

	err := d.Handle(context.Background(), eventMessage(t, events.BookingEvent{
		Type:             events.TypeBookingCanceled,
		BookingID:        "booking-2",
		RequesterContact: "guest@example.com",
	}))

	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Your booking was canceled", notifier.sent[0].Subject)
}

func TestHandleSkipsUnknownEventType(t *testing.T) {
	d, notifier := newTestDispatcher()

	err := d.Handle(context.Background(), eventMessage(t, events.BookingEvent{
		Type:             "booking.unknown",
		BookingID:        "booking-3",
		RequesterContact: "guest@example.com",
	}))

	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestHandleSkipsEventWithoutContact(t *testing.T) {
	d, notifier := newTestDispatcher()

	err := d.Handle(context.Background(), eventMessage(t, events.BookingEvent{
		Type:      events.TypeBookingConfirmed,
		BookingID: "booking-4",
	}))

	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	d, notifier := newTestDispatcher()

	err := d.Handle(context.Background(), kafka.Message{
		Key:     "booking-5",
		Value:   []byte("not json"),
		Headers: map[string]string{},
	})

	require.Error(t, err)
	assert.Empty(t, notifier.sent)
}

func TestHandlePropagatesDeliveryFailure(t *testing.T) {
	d, notifier := newTestDispatcher()
	notifier.sendFunc = func(context.Context, Notification) error {
		return errors.New("smtp unavailable")
	}

	err := d.Handle(context.Background(), eventMessage(t, events.BookingEvent{
		Type:             events.TypeBookingConfirmed,
		BookingID:        "booking-6",
		RequesterContact: "guest@example.com",
	}))

	require.Error(t, err)
}
