package requests

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField       = errors.New("field is required")
	ErrInvalidOrderSize   = errors.New("invalid order size")
	ErrInvalidRequestDate = errors.New("could not parse request date")
	ErrInvalidAmount      = errors.New("invalid total amount")
)

const validationErrorFormat = "%s: %v %q"

// ValidationError reports a malformed record field. Value holds the raw input
// exactly as it was received.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (validationError *ValidationError) Error() string {
	return fmt.Sprintf(validationErrorFormat, validationError.Field, validationError.Err, validationError.Value)
}

func (validationError *ValidationError) Unwrap() error {
	return validationError.Err
}

func newValidationError(field string, value string, cause error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Err: cause}
}
