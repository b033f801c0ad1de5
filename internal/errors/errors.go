package errors

import (
	stderrors "errors"
	"fmt"
)

// EngineError is the structured error type for the indexing engine.
// It provides context for error handling, logging, and reporting.
type EngineError struct {
	// Code is the unique error code (e.g., "ERR_201_PATH_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Provider, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with EngineError.
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *EngineError) WithDetail(key, value string) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new EngineError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *EngineError {
	return &EngineError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an EngineError from an existing error.
// The error's message becomes the EngineError message.
func Wrap(code string, err error) *EngineError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// PathNotFound creates an error for a missing scan root or file.
func PathNotFound(path string) *EngineError {
	return New(ErrCodePathNotFound, fmt.Sprintf("path not found: %s", path), nil).
		WithDetail("path", path)
}

// ReadFailure creates an error for an unreadable file.
func ReadFailure(path string, cause error) *EngineError {
	return New(ErrCodeReadFailure, fmt.Sprintf("failed to read %s", path), cause).
		WithDetail("path", path)
}

// NotText creates an error for a file whose contents are not valid UTF-8.
func NotText(path string) *EngineError {
	return New(ErrCodeNotText, fmt.Sprintf("not a text file: %s", path), nil).
		WithDetail("path", path)
}

// ScanInProgress creates an error for a rejected redundant scan start.
func ScanInProgress() *EngineError {
	return New(ErrCodeScanInProgress, "a full scan is already in progress", nil)
}

// ProviderUnavailable creates an error for an unreachable embedding provider.
func ProviderUnavailable(cause error) *EngineError {
	return New(ErrCodeProviderUnavailable, "embedding provider unavailable", cause)
}

// ProviderFailed creates an error for a failed embedding call.
func ProviderFailed(message string, cause error) *EngineError {
	return New(ErrCodeProviderFailed, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is an EngineError with Retryable flag set.
func IsRetryable(err error) bool {
	var ee *EngineError
	if stderrors.As(err, &ee) {
		return ee.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var ee *EngineError
	if stderrors.As(err, &ee) {
		return ee.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an EngineError.
// Returns empty string for other error types.
func GetCode(err error) string {
	var ee *EngineError
	if stderrors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// HasCode reports whether err carries the given engine error code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}
