package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation       ErrorType = "VALIDATION"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeDuplicateName    ErrorType = "DUPLICATE_NAME"
	ErrorTypeInvalidOperation ErrorType = "INVALID_OPERATION"

	// Migration and change-record errors
	ErrorTypeUnsupportedVersion ErrorType = "UNSUPPORTED_VERSION"
	ErrorTypeMalformedChange    ErrorType = "MALFORMED_CHANGE"

	// Storage boundary errors
	ErrorTypeVersionConflict ErrorType = "VERSION_CONFLICT"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same error type
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Type == t.Type
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single error detail
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Type == errorType
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// NewValidationErrorf creates a validation error with a formatted message
func NewValidationErrorf(format string, args ...interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: captureStackTrace(),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StackTrace: captureStackTrace(),
	}
}

// NewDuplicateNameError creates a duplicate name error
func NewDuplicateNameError(name string) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicateName,
		Message:    fmt.Sprintf("duplicate node name %s", name),
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidOperationError creates an invalid operation error
func NewInvalidOperationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidOperation,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// NewUnsupportedVersionError creates an unsupported schema version error
func NewUnsupportedVersionError(version, earliest, current int) *AppError {
	return &AppError{
		Type: ErrorTypeUnsupportedVersion,
		Message: fmt.Sprintf(
			"schema version %d is outside the supported range [v%d, v%d]",
			version, earliest, current),
		StackTrace: captureStackTrace(),
	}
}

// NewMalformedChangeError creates a malformed change record error
func NewMalformedChangeError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeMalformedChange,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// NewMalformedChangeErrorf creates a malformed change record error with
// a formatted message
func NewMalformedChangeErrorf(format string, args ...interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeMalformedChange,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: captureStackTrace(),
	}
}

// NewVersionConflictError creates a version conflict error for the
// optimistic-concurrency boundary
func NewVersionConflictError(id string, expected, actual int) *AppError {
	return &AppError{
		Type: ErrorTypeVersionConflict,
		Message: fmt.Sprintf(
			"document %s has advanced to version %d, expected %d",
			id, actual, expected),
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// ValidationErrors collects multiple validation issues so callers see
// everything that is wrong at once instead of just the first failure.
type ValidationErrors struct {
	Issues []string
}

// NewValidationErrors creates an empty collector
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records one issue
func (v *ValidationErrors) Add(issue string) {
	v.Issues = append(v.Issues, issue)
}

// Addf records one formatted issue
func (v *ValidationErrors) Addf(format string, args ...interface{}) {
	v.Issues = append(v.Issues, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any issue was recorded
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Issues) > 0
}

// Combined returns all recorded issues as a single validation error,
// numbered in the order they were found.
func (v *ValidationErrors) Combined(prefix string) *AppError {
	var b strings.Builder
	for i, issue := range v.Issues {
		fmt.Fprintf(&b, "%d. %s ", i+1, issue)
	}
	return NewValidationError(prefix + strings.TrimSpace(b.String()))
}
