package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CustomError represents an application error with metadata
type CustomError struct {
	Code       string   // Machine-readable error code
	Message    string   // Human-readable message
	StatusCode int      // HTTP status code
	Cause      error    // Underlying error
	Details    []string // Human-readable reasons
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface for wrapping errors
func (e *CustomError) Unwrap() error {
	return e.Cause
}

// Is matches any CustomError carrying the same code
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCustomError creates a new custom error
func NewCustomError(code string, message string, statusCode int) *CustomError {
	return &CustomError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithCause returns a copy of e wrapping err. The receiver is left untouched so
// package-level sentinels can be derived from concurrently.
func (e *CustomError) WithCause(err error) *CustomError {
	c := *e
	c.Cause = err
	return &c
}

// WithMessage returns a copy of e with a replaced message
func (e *CustomError) WithMessage(message string) *CustomError {
	c := *e
	c.Message = message
	return &c
}

// WithDetails returns a copy of e carrying the given reasons
func (e *CustomError) WithDetails(details ...string) *CustomError {
	c := *e
	c.Details = append([]string(nil), details...)
	return &c
}

// Pre-defined errors
var (
	// ErrValidation is returned when the inbound payload is malformed (400)
	ErrValidation = NewCustomError(
		"VALIDATION_ERROR",
		"Request validation failed",
		400,
	)

	// ErrUnsupportedSource is returned for denylisted source hosts (400)
	ErrUnsupportedSource = NewCustomError(
		"UNSUPPORTED_SOURCE",
		"Not Supported",
		400,
	)

	// ErrUnauthorized is returned for a missing or mismatched API key (401)
	ErrUnauthorized = NewCustomError(
		"UNAUTHORIZED",
		"Invalid API Key",
		401,
	)

	// ErrExtractionTimeout is returned when the extractor exceeds its deadline
	ErrExtractionTimeout = NewCustomError(
		"EXTRACTION_TIMEOUT",
		"Metadata fetch timed out",
		500,
	)

	// ErrExtraction is returned for any other extractor failure. Message carries
	// the tool's diagnostic output.
	ErrExtraction = NewCustomError(
		"EXTRACTION_ERROR",
		"Media extraction failed",
		500,
	)

	// ErrProxyFetch is returned when an upstream stream cannot be opened (400)
	ErrProxyFetch = NewCustomError(
		"PROXY_FETCH_ERROR",
		"Failed to fetch video stream",
		400,
	)

	// ErrInternal is the catch-all server error
	ErrInternal = NewCustomError(
		"INTERNAL_ERROR",
		"Internal server error",
		500,
	)
)

// IsCustomError checks if an error is a CustomError
func IsCustomError(err error) bool {
	var customErr *CustomError
	return errors.As(err, &customErr)
}

// GetStatusCode extracts HTTP status code from an error
func GetStatusCode(err error) int {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.StatusCode
	}
	return 500
}

// GetErrorCode extracts error code from an error
func GetErrorCode(err error) string {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code
	}
	return "UNKNOWN_ERROR"
}

// GetErrorMessage extracts human-readable message from an error
func GetErrorMessage(err error) string {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "An unknown error occurred"
}

// Reasons joins the error's details into a single sentence, falling back to
// the message when no details are attached.
func Reasons(err error) string {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		if len(customErr.Details) > 0 {
			return strings.Join(customErr.Details, ", ")
		}
		return customErr.Message
	}
	return GetErrorMessage(err)
}
