package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"
	ErrNotFound ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrConfigRequire ErrorCode = "CONFIG_REQUIRE"

	// Validation errors
	ErrInvalidVersion    ErrorCode = "INVALID_VERSION"
	ErrInvalidSummary    ErrorCode = "INVALID_SUMMARY"
	ErrInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrTicketExists      ErrorCode = "TICKET_EXISTS"
	ErrTicketNotFound    ErrorCode = "TICKET_NOT_FOUND"

	// Remote errors
	ErrRemote ErrorCode = "REMOTE"
)

// RelcmError represents a structured error with code and details
type RelcmError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RelcmError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RelcmError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RelcmError) Is(target error) bool {
	var targetErr *RelcmError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RelcmError with the given code and message
func New(code ErrorCode, message string) *RelcmError {
	return &RelcmError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RelcmError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RelcmError {
	return &RelcmError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RelcmError
func Wrap(err error, code ErrorCode, message string) *RelcmError {
	if err == nil {
		return nil
	}
	return &RelcmError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RelcmError {
	if err == nil {
		return nil
	}
	return &RelcmError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RelcmError) WithDetail(key string, value interface{}) *RelcmError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var relcmErr *RelcmError
	if errors.As(err, &relcmErr) {
		return relcmErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RelcmError
func GetErrorCode(err error) ErrorCode {
	var relcmErr *RelcmError
	if errors.As(err, &relcmErr) {
		return relcmErr.Code
	}
	return ErrUnknown
}
