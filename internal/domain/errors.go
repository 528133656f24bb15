package domain

import "errors"

// Error taxonomy shared by services and the HTTP layer. Services wrap these
// with %w so callers classify via errors.Is without string matching.
var (
	// ErrValidation - malformed identifier or out-of-range numeric input.
	// Rejected before any store query or transaction is opened.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound - target entity absent, or present but owned by a
	// different user. Distinguishes "nothing happened" from failure.
	ErrNotFound = errors.New("not found")

	// ErrConflict - an invariant would be violated outside a transactional
	// path. Rare; the transactional designs make it mostly unreachable.
	ErrConflict = errors.New("conflict")

	// ErrStorage - underlying document-store or transaction failure. A
	// retry may help; the failed operation left no partial state.
	ErrStorage = errors.New("storage failure")
)
