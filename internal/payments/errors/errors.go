// Package errors defines sentinel errors for the payments domain.
package errors

import "errors"

var (
	// ErrNotFound is returned when a payment does not exist.
	ErrNotFound = errors.New("payment not found")

	// ErrInvalidID is returned when a payment ID is not a valid UUID.
	ErrInvalidID = errors.New("invalid payment ID")

	// ErrGatewayRejected is returned when the external gateway declines a
	// request or reports a failed verification.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
)
