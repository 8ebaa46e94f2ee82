package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrInvalidRange mirrors the date-range construction failure: the range
	// has no nights in it.
	ErrInvalidRange = errors.New("end date must be after start date")

	ErrPastDate = errors.New("start date cannot be in the past")

	// ErrPropertyUnavailable is the admission rejection: the requested range
	// overlaps an active booking, or the race for the property slot was lost.
	ErrPropertyUnavailable = errors.New("property is not available for the selected dates")

	// ErrInvalidTransition covers every illegal status change, including
	// canceling a stay that has already started.
	ErrInvalidTransition = errors.New("booking status transition not allowed")

	// ErrStaleStatus is returned by conditional writes when the stored status
	// no longer matches what the caller read: the booking changed (or was
	// deleted) between read and write.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)
