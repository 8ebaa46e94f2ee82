// Package errors defines sentinel errors for the reviews domain.
package errors

import "errors"

var (
	// ErrNotFound is returned when a review does not exist.
	ErrNotFound = errors.New("review not found")

	// ErrInvalidID is returned when a review ID is not a valid UUID.
	ErrInvalidID = errors.New("invalid review ID")

	// ErrRatingOutOfRange is returned when a rating falls outside 1..5.
	ErrRatingOutOfRange = errors.New("rating out of range")

	// ErrDuplicateReview is returned when the author already reviewed the
	// property. The unique index catches the racing case.
	ErrDuplicateReview = errors.New("review already exists for this property and author")

	// ErrNoEligibleStay is returned when the author has no completed
	// confirmed stay at the property.
	ErrNoEligibleStay = errors.New("no completed stay at this property")

	// ErrStaleReview is returned by conditional writes when the stored
	// review no longer matches what the caller read.
	ErrStaleReview = errors.New("review changed concurrently")
)
