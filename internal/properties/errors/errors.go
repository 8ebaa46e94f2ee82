// Package errors defines sentinel errors for the properties domain.
package errors

import "errors"

var (
	// ErrNotFound is returned when a property does not exist.
	ErrNotFound = errors.New("property not found")

	// ErrInvalidID is returned when a property ID is not a valid UUID.
	ErrInvalidID = errors.New("invalid property ID")
)
