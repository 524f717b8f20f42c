package errors

import "errors"

var (
	ErrServiceNotFound = errors.New("service not found")

	ErrCategoryNotFound = errors.New("category not found")

	ErrNotOwner = errors.New("service belongs to another provider")
)
