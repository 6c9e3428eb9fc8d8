package validation

import (
	"fmt"
	"strings"

	domainerrors "consortial/internal/errors"
)

// Validator defines validation methods
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records the first error for a field
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required checks if a value is set
func (v *Validator) Required(field string, value interface{}) {
	if value == nil {
		v.AddError(field, "is required")
		return
	}

	switch val := value.(type) {
	case string:
		v.Check(strings.TrimSpace(val) != "", field, "is required")
	case int:
		v.Check(val != 0, field, "is required")
	case uint:
		v.Check(val != 0, field, "is required")
	}
}

// MaxLength checks if a string has at most n characters
func (v *Validator) MaxLength(field string, value string, n int) {
	v.Check(len([]rune(value)) <= n, field, fmt.Sprintf("must not be more than %d characters long", n))
}

// Min checks if a number is at least min
func (v *Validator) Min(field string, value, min int) {
	v.Check(value >= min, field, fmt.Sprintf("must be at least %d", min))
}

// Err returns the collected errors as a validation error, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return domainerrors.NewValidationError(v.Errors)
}
