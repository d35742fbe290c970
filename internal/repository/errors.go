package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrConflict indicates an optimistic-concurrency version mismatch.
	ErrConflict = errors.New("repository: version conflict")
)
