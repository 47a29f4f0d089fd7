// Package errors provides structured error types for runigram.
//
// Every failure raised by the image core carries a machine-readable code so
// callers (the CLI, the HTTP server) can tell bad input apart from internal
// faults without string matching.
//
// # Error Codes
//
//   - MALFORMED_INPUT: the decoder met truncated or non-numeric data
//   - DIMENSION_MISMATCH: grids of different shape, or a non-positive target size
//   - INVALID_PARAMETER: a scalar argument is out of its domain (n <= 0, NaN alpha)
//   - FILE_NOT_FOUND, INVALID_CONFIG, UNSUPPORTED, INTERNAL_ERROR: boundary errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDimensionMismatch, "blend: %dx%d vs %dx%d", r1, c1, r2, c2)
//	if errors.Is(err, errors.ErrCodeDimensionMismatch) {
//	    // Handle shape error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Core errors
	ErrCodeMalformedInput    Code = "MALFORMED_INPUT"
	ErrCodeDimensionMismatch Code = "DIMENSION_MISMATCH"
	ErrCodeInvalidParameter  Code = "INVALID_PARAMETER"

	// Boundary errors
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeUnsupported   Code = "UNSUPPORTED"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
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
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInputError reports whether err was caused by the caller's data rather
// than by the environment. Input errors never succeed on retry.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeMalformedInput, ErrCodeDimensionMismatch, ErrCodeInvalidParameter:
		return true
	}
	return false
}
