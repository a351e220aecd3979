package store

import "errors"

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when a unique index rejects a write and the
// database supplied no human-readable validation message. Callers fall back
// to a flow-specific string.
var ErrDuplicateKey = errors.New("duplicate key")

// ConflictError is returned when a write is rejected with a validation
// message worth surfacing to the caller.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}
