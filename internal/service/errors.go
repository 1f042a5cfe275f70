package service

import "errors"

// Error taxonomy surfaced to the transport layer. Handlers map these to
// response codes; everything else is treated as a transient store failure.
var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("validation failed")

	// ErrIllegalTransition marks an operation attempted against a booking
	// in an incompatible status. The booking is left unchanged.
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrNotFound marks an absent user, tutor, chat or booking.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an operation by a non-participant.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials marks a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
