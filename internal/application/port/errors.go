package port

import "errors"

var (
	// ErrNotFound is returned when a bill or attachment does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller may not see or change a bill
	ErrForbidden = errors.New("forbidden")

	// ErrMalformedBill is returned when an update carries data that is not a bill
	ErrMalformedBill = errors.New("malformed bill data")
)
