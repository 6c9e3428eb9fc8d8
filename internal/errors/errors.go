// Package errors holds the domain errors shared by the fee engine, its
// repositories and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a DomainError for callers that map errors to responses.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
)

// DomainError is a coded error. Two DomainErrors match under errors.Is when
// their codes are equal, so wrapped or re-worded copies still match the sentinel.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Withf returns a copy of e with extra detail appended to the message.
func (e *DomainError) Withf(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message + ": " + fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation, true
	}
	return "", false
}

// ValidationError reports field-level problems with caller input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ErrValidation matches any *ValidationError under errors.Is.
var ErrValidation = errors.New("validation failed")
