package model

import "time"

// Booking statuses. A rejected admission never produces a record, so there
// is no rejected status to persist.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCanceled  = "canceled"
)

// Booking is a reservation of one property for a half-open date range.
// TotalPriceCents is derived: nights times the property's nightly rate at
// creation (or date-change) time.
type Booking struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	PropertyID      string    `json:"property_id" bson:"property_id" validate:"required,uuid4"`
	RequesterID     string    `json:"requester_id" bson:"requester_id" validate:"required"`
	DateRange       DateRange `json:"date_range" bson:"date_range,inline" validate:"required"`
	TotalPriceCents int64     `json:"total_price_cents" bson:"total_price_cents" validate:"omitempty,gt=0"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed canceled"`
	ExternalRef     string    `json:"external_ref,omitempty" bson:"external_ref,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Active reports whether the booking blocks its dates for other requesters.
func (b *Booking) Active() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// CanCancel reports whether the booking is still inside its cancellation
// window: active and strictly before check-in.
func (b *Booking) CanCancel(today time.Time) bool {
	return b.Active() && b.DateRange.IsFuture(today)
}

// StayCompleted reports whether the guest has actually stayed: the booking
// was confirmed and checkout is behind us. Only completed stays unlock
// review eligibility.
func (b *Booking) StayCompleted(today time.Time) bool {
	return b.Status == BookingConfirmed && b.DateRange.IsPast(today)
}

// BookingUpdate carries a date-range change request. Property and requester
// are immutable; status moves only through the lifecycle operations.
type BookingUpdate struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
