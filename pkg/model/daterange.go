package model

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when a date range has no nights in it.
var ErrInvalidRange = errors.New("end date must be after start date")

// DateRange is a half-open calendar interval [Start, End): a stay occupies
// the start date but not the checkout date, so back-to-back bookings may
// share a boundary without conflicting. Both bounds are dates at midnight UTC.
type DateRange struct {
	Start time.Time `json:"start_date" bson:"start_date" validate:"required"`
	End   time.Time `json:"end_date" bson:"end_date" validate:"required"`
}

// NewDateRange normalizes both bounds to midnight UTC and rejects ranges
// shorter than one night.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Midnight(start), End: Midnight(end)}
	if !r.Valid() {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// Midnight truncates a timestamp to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r DateRange) Valid() bool {
	return r.End.After(r.Start)
}

// Overlaps reports whether two half-open ranges share at least one night.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Nights is the length of the stay in nights. Valid ranges always have at
// least one.
func (r DateRange) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// IsFuture reports whether the stay has not started yet.
func (r DateRange) IsFuture(today time.Time) bool {
	return r.Start.After(Midnight(today))
}

// HasStarted reports whether check-in date has been reached.
func (r DateRange) HasStarted(today time.Time) bool {
	return !r.IsFuture(today)
}

// IsPast reports whether checkout is strictly behind today, i.e. the stay is
// over.
func (r DateRange) IsPast(today time.Time) bool {
	return r.End.Before(Midnight(today))
}
