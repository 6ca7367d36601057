package services

import "errors"

// Sentinel errors translated to HTTP statuses at the handler boundary.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidState        = errors.New("invalid state for this operation")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrConflict            = errors.New("conflicting concurrent update, retry")
	ErrValidation          = errors.New("validation failed")
)
