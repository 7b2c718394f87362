package service

import "errors"

// Sentinel errors shared by the services. Handlers map these to HTTP
// classes: validation and not-found to 4xx, conflicts to 409 (retryable),
// everything else to the database error code.
var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)
