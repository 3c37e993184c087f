package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	// ErrStatusChanged reports that a guarded status update found the
	// reservation in a different state than expected.
	ErrStatusChanged = errors.New("reservation status changed concurrently")
)
