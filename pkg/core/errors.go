package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a query error for diagnostics and reporting.
type ErrorCategory int

const (
	ErrCategoryNone     ErrorCategory = iota // No error
	ErrCategoryMatch                         // Selector produced no match
	ErrCategorySelector                      // Selector construction defect
	ErrCategoryTree                          // Tree acquisition failure
	ErrCategoryConfig                        // Invalid configuration
)

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryMatch:
		return "match"
	case ErrCategorySelector:
		return "selector"
	case ErrCategoryTree:
		return "tree"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// QueryError represents a structured error with category and details.
type QueryError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: element_not_found, malformed_selector, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Is matches QueryErrors by code, so copies derived through
// WithCause/WithDetails still satisfy errors.Is against the predefined
// values.
func (e *QueryError) Is(target error) bool {
	var qe *QueryError
	if !errors.As(target, &qe) {
		return false
	}
	return e.Code == qe.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *QueryError) WithCause(cause error) *QueryError {
	return &QueryError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *QueryError) WithMessage(msg string) *QueryError {
	return &QueryError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *QueryError) WithDetails(details map[string]interface{}) *QueryError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &QueryError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors. All traversal failures collapse to ErrElementNotFound
// at the top level; the other values stay distinguishable for diagnostics.
var (
	ErrElementNotFound = &QueryError{
		Category: ErrCategoryMatch,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrMalformedSelector = &QueryError{
		Category: ErrCategorySelector,
		Code:     "malformed_selector",
		Message:  "malformed selector",
	}
	ErrTreeUnavailable = &QueryError{
		Category: ErrCategoryTree,
		Code:     "tree_unavailable",
		Message:  "accessibility tree unavailable",
	}
	ErrNoRoots = &QueryError{
		Category: ErrCategoryTree,
		Code:     "no_roots",
		Message:  "no root nodes available",
	}
	ErrInvalidConfig = &QueryError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
)

// NewQueryError creates a new QueryError with the given parameters.
func NewQueryError(category ErrorCategory, code, message string) *QueryError {
	return &QueryError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}
