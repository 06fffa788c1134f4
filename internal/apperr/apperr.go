// Package apperr defines the error taxonomy shared by the workflow and the
// HTTP handlers. Every command failure maps to exactly one of these
// sentinels, and any of them returned from inside a transaction aborts the
// whole write set.
package apperr

import "errors"

var (
	// ErrUnauthorized indicates the caller presented no valid identity.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden indicates the caller's role lacks the required capability.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates a referenced complaint, action or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTarget indicates a referenced user lacks the required role,
	// e.g. assigning a complaint to a non-worker.
	ErrInvalidTarget = errors.New("invalid target user")
	// ErrInvalidState indicates a transition attempted from the wrong status.
	ErrInvalidState = errors.New("invalid state for this operation")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
)
