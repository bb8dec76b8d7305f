// Package errors provides structured error handling for synmap.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (rule files, edge store)
//   - 4XX: Validation errors (rule syntax, normalization)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file, stream and store I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates rule or input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeReadFailed     = "ERR_203_READ_FAILED"
	ErrCodeLockFailed     = "ERR_204_LOCK_FAILED"
	ErrCodeStoreFailed    = "ERR_205_STORE_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput        = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidMapping      = "ERR_402_INVALID_MAPPING"
	ErrCodeNormalizationFailed = "ERR_403_NORMALIZATION_FAILED"
	ErrCodeUnknownSet          = "ERR_404_UNKNOWN_SET"
	ErrCodeUnknownAnalyzer     = "ERR_405_UNKNOWN_ANALYZER"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeBuildFailed  = "ERR_502_BUILD_FAILED"
	ErrCodeIndexFailed  = "ERR_503_INDEX_FAILED"
	ErrCodeSearchFailed = "ERR_504_SEARCH_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "402" from "ERR_402_INVALID_MAPPING")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// A malformed rule source invalidates the whole synonym graph, so rule
// validation failures are fatal to the build that hit them.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInvalidMapping, ErrCodeNormalizationFailed, ErrCodeBuildFailed:
		return SeverityFatal
	case ErrCodeLockFailed:
		return SeverityWarning
	}
	return SeverityError
}
