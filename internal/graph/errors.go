package graph

import (
	"errors"
	"fmt"
)

// ErrInvalidData is returned for any payload the renderer must refuse.
var ErrInvalidData = errors.New("invalid data")

// ValidationError names the offending field of a rejected payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidData, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidData, e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidData) match.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidData
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
