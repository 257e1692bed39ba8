package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports malformed caller input. It is always raised before
// any network call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// WrapValidator converts the first violation reported by
// go-playground/validator into a ValidationError. Returns nil when err is nil.
func WrapValidator(err error) error {
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Reason: "failed rule '" + fe.Tag() + "'"}
	}
	return &ValidationError{Reason: err.Error()}
}
