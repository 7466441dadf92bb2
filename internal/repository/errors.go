package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("entity already exists")

	// ErrStatusConflict is returned by a conditional transition when the
	// stored status no longer matches the expected one.
	ErrStatusConflict = errors.New("status changed concurrently")
)
