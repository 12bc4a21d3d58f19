package validator

import (
	"errors"
	"strings"
)

// Machine-readable codes shared by the field cleaners.
const (
	CodeRequired      = "required"
	CodeInvalid       = "invalid"
	CodeInvalidChoice = "invalid_choice"
)

// ValidationError is a single user-facing validation failure.
type ValidationError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NewError creates a ValidationError.
func NewError(message, code string) *ValidationError {
	return &ValidationError{Message: message, Code: code}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors lets a collaborator report several failures at once.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Message)
	}
	return strings.Join(msgs, "; ")
}

// IsValidationError reports whether err carries user-facing validation failures.
func IsValidationError(err error) bool {
	var ve *ValidationError
	var ves ValidationErrors
	var set *ErrorSet
	return errors.As(err, &ve) || errors.As(err, &ves) || errors.As(err, &set)
}

// unwrap flattens err into the validation errors it carries. Errors that are not
// validation errors are reported with CodeInvalid and their text.
func unwrap(err error) []*ValidationError {
	var ves ValidationErrors
	if errors.As(err, &ves) {
		return ves
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return []*ValidationError{ve}
	}
	var set *ErrorSet
	if errors.As(err, &set) {
		out := make([]*ValidationError, 0, set.Len())
		for _, f := range set.Fields() {
			out = append(out, set.Get(f)...)
		}
		return out
	}
	return []*ValidationError{NewError(err.Error(), CodeInvalid)}
}
