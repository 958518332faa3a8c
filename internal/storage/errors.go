package storage

import "errors"

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert or update loses to a
	// uniqueness constraint (duplicate group code, duplicate email,
	// concurrent membership write).
	ErrConflict = errors.New("conflict")
)
