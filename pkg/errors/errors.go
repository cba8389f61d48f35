// Package errors gives run-aborting failures a machine-readable [Code].
//
// Only errors that stop a run are coded: bad configuration, a missing
// credential when one is required, an unwritable output path, an unusable
// cache backend. Failures inside the fetch pipeline (retries, missing data,
// dropped repositories) are logged where they happen and never reach here.
//
// [ExitCode] turns any error into the process status used by main:
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "concurrency must be at least 1, got %d", n)
//	os.Exit(errors.ExitCode(err)) // 2
//
// [Wrap] keeps the cause reachable through errors.Is and errors.As.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidOrg    Code = "INVALID_ORG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Local resource errors
	ErrCodeIO    Code = "IO_ERROR"
	ErrCodeCache Code = "CACHE_ERROR"

	// Cancellation
	ErrCodeCanceled Code = "CANCELED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Context cancellation maps to ErrCodeCanceled even when uncoded.
// Returns empty string otherwise.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.Canceled) {
		return ErrCodeCanceled
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// ExitCode maps an error to a process exit status: 0 for nil, 130 for
// cancellation, 2 for configuration and input errors, 1 otherwise.
func ExitCode(err error) int {
	switch code := GetCode(err); {
	case err == nil:
		return 0
	case code == ErrCodeCanceled:
		return 130
	case code == ErrCodeInvalidInput, code == ErrCodeInvalidConfig, code == ErrCodeInvalidOrg,
		code == ErrCodeInvalidPath, code == ErrCodeInvalidColor, code == ErrCodeUnauthorized:
		return 2
	default:
		return 1
	}
}
