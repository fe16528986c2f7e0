package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStatusConflict is returned when a compare-and-set status update
	// finds a status other than the expected one.
	ErrStatusConflict = errors.New("status changed concurrently")

	// ErrDuplicateSuccess is returned when a second successful attempt
	// would be recorded for the same order.
	ErrDuplicateSuccess = errors.New("order already has a successful payment attempt")
)
