package service

import "errors"

// Errors returned by the services. Callers match them with errors.Is; any
// other error is an internal failure.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)
