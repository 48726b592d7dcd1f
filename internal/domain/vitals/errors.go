package vitals

import (
	"errors"
	"strings"
)

var ErrValidationFailed = errors.New("validation failed")

// ValidationError lists every field-level problem found in one submission.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return ErrValidationFailed.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
