package model

import "errors"

// Error taxonomy shared across the engines. Callers classify with
// errors.Is and decide whether to block a transition, retry, or surface.
var (
	// ErrValidation marks a missing or invalid required field. Recoverable;
	// blocks only the attempted transition.
	ErrValidation = errors.New("validation failed")

	// ErrPrecondition marks a missing prerequisite record or state, such as
	// compliance analysis before a risk assessment exists.
	ErrPrecondition = errors.New("precondition not met")

	// ErrTransport marks a notification delivery failure. Retried by the
	// periodic sweep, never silently dropped.
	ErrTransport = errors.New("notification transport failed")

	// ErrNotFound marks an operation on a missing record. Surfaced
	// immediately, no retry.
	ErrNotFound = errors.New("record not found")
)
