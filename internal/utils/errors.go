package utils

import (
	"errors"
	"fmt"
)

// ValidationError marks a configuration or input-shape problem. These are
// programming errors surfaced at construction time, as opposed to the
// data-quality unknowns the analytics layer expresses as values.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a fixed message.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NewValidationErrorf creates a ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a lookup that matched nothing, so handlers can map
// it to a 404 instead of a 500.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewNotFoundError creates a NotFoundError for a resource/key pair.
func NewNotFoundError(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
