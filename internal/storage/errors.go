package storage

import "errors"

// Errors shared by all store backends. Analysis artifacts are immutable
// once written; re-running an analysis inserts a new result instead of
// updating the old one.
var (
	// ErrNotFound is returned when no record matches the query.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an
	// existing record. Stores never update in place.
	ErrDuplicateKey = errors.New("duplicate key: results are immutable")

	// ErrInvalidInput is returned when a record fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
