package errors

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")

	ErrProviderDetailsNotFound = errors.New("provider details not found")

	ErrInvalidPhone = errors.New("phone number is not valid for the configured region")
)
