package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	// ErrNotFound is returned when a referenced product does not exist.
	ErrNotFound = errors.New("requested resource not found")

	// ErrValidationFailed wraps malformed input such as an empty chat message.
	ErrValidationFailed = errors.New("validation failed")

	// ErrMutationFailed wraps any store write error. No event is published
	// when a mutation fails.
	ErrMutationFailed = errors.New("product mutation failed")

	// ErrAlreadyTriggered marks a change request rejected by the cooldown.
	// It is an expected outcome, not a fault.
	ErrAlreadyTriggered = errors.New("product change already triggered recently")

	// ErrNoChangeEnabled marks a trigger request with every change kind disabled.
	ErrNoChangeEnabled = errors.New("no change types enabled")

	// ErrSimulatedFailure is the intentional random failure injected into checkout.
	ErrSimulatedFailure = errors.New("connection to the server failed, please try again")
)
