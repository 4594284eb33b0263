package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the library.
type ErrorCode string

// Ingestion error codes
const (
	ErrIngestion         ErrorCode = "INGESTION"
	ErrMissingField      ErrorCode = "MISSING_FIELD"
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrSnapshotCorrupt   ErrorCode = "SNAPSHOT_CORRUPT"
)

// Configuration error codes
const (
	ErrConfiguration  ErrorCode = "CONFIGURATION"
	ErrTokenizerError ErrorCode = "TOKENIZER_ERROR"
	ErrLabelMismatch  ErrorCode = "LABEL_MISMATCH"
	ErrUnknownLabel   ErrorCode = "UNKNOWN_LABEL"
)

// Error represents a structured error with code, message, and the file path
// the error originated from, if any.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Cause != nil:
		return fmt.Sprintf("[%s] %s (%s): %v", e.Code, e.Message, e.Path, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, e.Path)
	case e.Cause != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithPath records the file the error originated from.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// GetErrorCode extracts the error code from an error, looking through
// wrapped errors.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
