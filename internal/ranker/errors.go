package ranker

import (
	"errors"
	"fmt"
)

// ErrItemNotFound is returned by repository lookups that match no rank item.
var ErrItemNotFound = errors.New("rank item not found")

// ValidationError reports a violated precondition. It aborts the requested
// operation before any partial work; callers can detect it with errors.As.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
