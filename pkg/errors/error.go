// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Configuration errors (100-199): Invalid trade specs, validation config, thresholds
//   - Data errors (200-299): Malformed bars, missing range data, query failures
//   - Evaluation errors (300-399): Degenerate risk and excursion errors
//   - Robustness errors (400-499): Insufficient samples, empty trade sequences
//   - Engine errors (600-699): Backtest engine state and pre-run check errors
//   - Report errors (700-799): Result serialization failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidStopFraction, "stop fraction must be in (0, 1]")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeDataNotFound, "no bars found for instance %s", id)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeDataNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsDataError reports whether the error carries a per-instance data error code.
// Data errors exclude a single range instance from a run; they never abort the sweep.
func IsDataError(err error) bool {
	code := GetCode(err)

	return code >= 200 && code < 300
}

// IsConfigError reports whether the error carries a configuration error code.
// Configuration errors fail the whole run before any data is touched.
func IsConfigError(err error) bool {
	code := GetCode(err)

	return code >= 100 && code < 200
}

// InsufficientSampleError represents an inconclusive robustness partition:
// the partition holds fewer trades than the configured minimum, so it is
// reported but never used to fail a check.
type InsufficientSampleError struct {
	Required int    // Minimum trades required for the partition to count
	Actual   int    // Actual trades in the partition
	Label    string // Optional: partition label context
	Message  string // Human-readable message
}

// NewInsufficientSampleError creates a new InsufficientSampleError.
func NewInsufficientSampleError(required, actual int, label, message string) *InsufficientSampleError {
	return &InsufficientSampleError{
		Required: required,
		Actual:   actual,
		Label:    label,
		Message:  message,
	}
}

// NewInsufficientSampleErrorf creates a new InsufficientSampleError with a formatted message.
func NewInsufficientSampleErrorf(required, actual int, label, format string, args ...any) *InsufficientSampleError {
	return &InsufficientSampleError{
		Required: required,
		Actual:   actual,
		Label:    label,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientSampleError) Error() string {
	return e.Message
}

// IsInsufficientSampleError checks if an error is an InsufficientSampleError.
// It uses errors.As to check the error chain.
func IsInsufficientSampleError(err error) bool {
	var insufficientErr *InsufficientSampleError

	return errors.As(err, &insufficientErr)
}
