package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryUsage     Category = "usage"
	CategoryUserCode  Category = "user-code"
	CategoryTransport Category = "transport"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// PagekitError is a structured error with a code, fix suggestion, and
// documentation link.
type PagekitError struct {
	// Code is a unique error identifier (e.g., "P001").
	Code string

	// Category is the error type (usage, user-code, transport, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PagekitError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PagekitError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PagekitError) WithSuggestion(s string) *PagekitError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *PagekitError) WithDetail(d string) *PagekitError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *PagekitError) Wrap(err error) *PagekitError {
	e.Wrapped = err
	return e
}

// New creates a PagekitError from a registered error code.
func New(code string) *PagekitError {
	template, ok := registry[code]
	if !ok {
		return &PagekitError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PagekitError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new PagekitError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *PagekitError {
	return &PagekitError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Usage creates a usage error with a formatted message.
// Usage errors are programmer mistakes: they are descriptive, fatal at the
// call site, and never retried.
func Usage(format string, args ...any) *PagekitError {
	return Newf(CategoryUsage, format, args...)
}

// Transport creates a transport error with a formatted message.
func Transport(format string, args ...any) *PagekitError {
	return Newf(CategoryTransport, format, args...)
}

// UserCode wraps an error thrown by a user-supplied hook.
func UserCode(err error) *PagekitError {
	if err == nil {
		return nil
	}
	return &PagekitError{
		Category: CategoryUserCode,
		Message:  err.Error(),
		Wrapped:  err,
	}
}

// IsUsage reports whether err is (or wraps) a usage error.
func IsUsage(err error) bool {
	var pe *PagekitError
	if errors.As(err, &pe) {
		return pe.Category == CategoryUsage
	}
	return false
}

// IsFetch reports whether err is (or wraps) a transport error, such as a
// failed page-context fetch. Distinct from usage errors: transport errors
// are environmental and callers may degrade gracefully.
func IsFetch(err error) bool {
	var pe *PagekitError
	if errors.As(err, &pe) {
		return pe.Category == CategoryTransport
	}
	return false
}
