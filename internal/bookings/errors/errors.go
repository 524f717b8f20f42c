package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrServiceNotFound = errors.New("booked service not found")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	ErrStartInPast = errors.New("booking cannot start in the past")

	ErrClientStatusChange = errors.New("clients can only cancel their bookings")
)
