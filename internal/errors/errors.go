// Package errors provides a lightweight structured error type (PublishError)
// for category-based classification across the CLI, the Confluence client,
// and the reconciliation engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a publish error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryNetwork    ErrorCategory = "network"
	CategoryConfluence ErrorCategory = "confluence"
	CategoryNotFound   ErrorCategory = "not_found"

	// Local processing errors
	CategoryManifest   ErrorCategory = "manifest"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryRewrite    ErrorCategory = "rewrite"

	// Everything that should not happen
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// PublishError is a structured error with category, retryability, and context
type PublishError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PublishError
type ContextFields map[string]any

// Error implements the error interface
func (e *PublishError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *PublishError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *PublishError) WithContext(key string, value any) *PublishError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PublishError
func New(category ErrorCategory, severity ErrorSeverity, message string) *PublishError {
	return &PublishError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new PublishError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PublishError {
	return &PublishError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// IsCategory checks if an error (or any error it wraps) belongs to a
// specific category
func IsCategory(err error, category ErrorCategory) bool {
	var pe *PublishError
	if stderrors.As(err, &pe) {
		return pe.Category == category
	}
	return false
}
