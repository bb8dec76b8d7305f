package errors

import (
	stderrors "errors"
	"fmt"
)

// SynmapError is the structured error type for synmap.
// It provides rich context for error handling, logging, and user presentation.
type SynmapError struct {
	// Code is the unique error code (e.g., "ERR_402_INVALID_MAPPING").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SynmapError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SynmapError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SynmapError.
func (e *SynmapError) Is(target error) bool {
	if t, ok := target.(*SynmapError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SynmapError) WithDetail(key, value string) *SynmapError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *SynmapError) WithSuggestion(suggestion string) *SynmapError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SynmapError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *SynmapError {
	return &SynmapError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a SynmapError from an existing error.
// The error's message becomes the SynmapError message.
func Wrap(code string, err error) *SynmapError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinel returns a bare error carrying only code, for use as an
// errors.Is target.
func Sentinel(code string) *SynmapError {
	return &SynmapError{Code: code}
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SynmapError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *SynmapError {
	return New(ErrCodeReadFailed, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *SynmapError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SynmapError {
	return New(ErrCodeInternal, message, cause)
}

// As finds the first SynmapError in err's chain.
func As(err error) (*SynmapError, bool) {
	var se *SynmapError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if se, ok := As(err); ok {
		return se.Severity == SeverityFatal
	}
	return false
}

// HasCode reports whether any SynmapError in err's chain carries code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, Sentinel(code))
}

// GetCode extracts the error code from a SynmapError.
// Returns empty string if err does not wrap a SynmapError.
func GetCode(err error) string {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a SynmapError.
// Returns empty string if err does not wrap a SynmapError.
func GetCategory(err error) Category {
	if se, ok := As(err); ok {
		return se.Category
	}
	return ""
}
