package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryReactive Category = "reactive"
	CategoryCompile  Category = "compile"
	CategoryHost     Category = "host"
	CategoryConfig   Category = "config"
	CategoryStorage  Category = "storage"
)

// ReactorError is a structured error with a code, a hint and an optional cause.
type ReactorError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ReactorError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ReactorError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a ReactorError with the same code.
func (e *ReactorError) Is(target error) bool {
	t, ok := target.(*ReactorError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ReactorError) WithSuggestion(s string) *ReactorError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ReactorError) WithDetail(d string) *ReactorError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with fmt.Sprintf formatting.
func (e *ReactorError) WithDetailf(format string, args ...any) *ReactorError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *ReactorError) Wrap(err error) *ReactorError {
	e.Wrapped = err
	return e
}

// New creates a ReactorError from a registered error code.
// The registered explanation is shown by Format unless WithDetail overrides it.
func New(code string) *ReactorError {
	template, ok := registry[code]
	if !ok {
		return &ReactorError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ReactorError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
	}
}

// Newf creates a new ReactorError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ReactorError {
	return &ReactorError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ReactorError.
// Errors that already are (or wrap) a ReactorError are returned as that error.
func FromError(err error, code string) *ReactorError {
	if err == nil {
		return nil
	}
	var re *ReactorError
	if errors.As(err, &re) {
		return re
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, a ReactorError with the given code.
func HasCode(err error, code string) bool {
	var re *ReactorError
	for err != nil {
		if !errors.As(err, &re) {
			return false
		}
		if re.Code == code {
			return true
		}
		err = re.Wrapped
	}
	return false
}

// As is errors.As, re-exported so callers importing this package under the
// name "errors" keep access to it.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is errors.Is, re-exported for the same reason as As.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
