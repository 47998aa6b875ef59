package store

import "errors"

var (
	// ErrDuplicateHash is returned when appending content whose hash already
	// exists in the history. Callers treat it as a validation failure, not a
	// fatal condition.
	ErrDuplicateHash = errors.New("duplicate content hash")

	// ErrNotFound is returned for lookups that match no record.
	ErrNotFound = errors.New("record not found")
)
