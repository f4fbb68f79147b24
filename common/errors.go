package common

import "errors"

// Outcome errors returned by the entity services. Callers match them with
// errors.Is; the wrapped message carries the detail.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrStaleVersion    = errors.New("stale version")
)
