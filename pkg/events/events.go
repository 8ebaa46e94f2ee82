// Package events defines the outbound notification contract. The core emits
// events and moves on; the notification dispatcher consumes them with its own
// retry policy, so a publish failure never fails the triggering request.
package events

import (
	"context"
	"time"
)

const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCanceled  = "booking.canceled"
)

// BookingEvent is the payload for booking lifecycle notifications.
type BookingEvent struct {
	Type             string    `json:"type"`
	BookingID        string    `json:"booking_id"`
	PropertyID       string    `json:"property_id"`
	RequesterContact string    `json:"requester_contact"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher decouples the booking core from the transport. Implementations
// must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}
