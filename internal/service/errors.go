package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes and error codes; services wrap them with %w and context.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrExpired          = errors.New("invitation expired")
	ErrAlreadyCompleted = errors.New("test already completed")
)
