package service

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the gate denies an operation.
	ErrForbidden = errors.New("operation not permitted")
	// ErrNoRepository is returned by operations that need stored data when
	// the service runs without a database.
	ErrNoRepository = errors.New("planning repository not configured")
	ErrItemNotFound = errors.New("item not found")
)

// InvalidRequestError reports a malformed request before any computation.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
