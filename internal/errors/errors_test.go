package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynmapError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with SynmapError
	synErr := New(ErrCodeFileNotFound, "rules not found: places.txt", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, synErr)
	assert.Equal(t, originalErr, errors.Unwrap(synErr))
	assert.True(t, errors.Is(synErr, originalErr))
}

func TestSynmapError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "file error",
			code:     ErrCodeFileNotFound,
			message:  "places.txt not found",
			expected: "[ERR_201_FILE_NOT_FOUND] places.txt not found",
		},
		{
			name:     "mapping error",
			code:     ErrCodeInvalidMapping,
			message:  "synonym mapping is invalid for a, b, c",
			expected: "[ERR_402_INVALID_MAPPING] synonym mapping is invalid for a, b, c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestSynmapError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with same code
	err1 := New(ErrCodeInvalidMapping, "group A", nil)
	err2 := New(ErrCodeInvalidMapping, "group B", nil)

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))
	assert.True(t, errors.Is(err1, Sentinel(ErrCodeInvalidMapping)))
}

func TestSynmapError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeFileNotFound, "file not found", nil)
	err2 := New(ErrCodeConfigNotFound, "config not found", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestSynmapError_WithDetails_AddsContext(t *testing.T) {
	// Given: a base error
	err := New(ErrCodeInvalidMapping, "bad group", nil)

	// When: adding details
	err = err.WithDetail("group", "a,b,c")
	err = err.WithDetail("line", "3")

	// Then: details are available
	assert.Equal(t, "a,b,c", err.Details["group"])
	assert.Equal(t, "3", err.Details["line"])
}

func TestSynmapError_WithSuggestion_AddsSuggestion(t *testing.T) {
	err := New(ErrCodeInvalidMapping, "bad group", nil).
		WithSuggestion(`escape literal commas as "\,"`)

	assert.Equal(t, `escape literal commas as "\,"`, err.Suggestion)
}

func TestSynmapError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeFileNotFound, CategoryIO},
		{ErrCodeStoreFailed, CategoryIO},
		{ErrCodeInvalidMapping, CategoryValidation},
		{ErrCodeNormalizationFailed, CategoryValidation},
		{ErrCodeUnknownSet, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{ErrCodeBuildFailed, CategoryInternal},
		{"BAD", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestSynmapError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeInvalidMapping, SeverityFatal},
		{ErrCodeNormalizationFailed, SeverityFatal},
		{ErrCodeBuildFailed, SeverityFatal},
		{ErrCodeLockFailed, SeverityWarning},
		{ErrCodeFileNotFound, SeverityError},
		{ErrCodeConfigInvalid, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestWrap_CreatesSynmapErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	synErr := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, synErr)
	assert.Equal(t, ErrCodeInternal, synErr.Code)
	assert.Equal(t, "something went wrong", synErr.Message)
	assert.Equal(t, originalErr, synErr.Cause)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestConstructors_SetCategory(t *testing.T) {
	assert.Equal(t, CategoryConfig, ConfigError("invalid yaml syntax", nil).Category)
	assert.Equal(t, CategoryIO, IOError("cannot read rules", nil).Category)
	assert.Equal(t, CategoryValidation, ValidationError("empty name", nil).Category)
	assert.Equal(t, CategoryInternal, InternalError("boom", nil).Category)
}

func TestIsFatal_ChecksFatalSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "invalid mapping",
			err:      New(ErrCodeInvalidMapping, "a,b,c", nil),
			expected: true,
		},
		{
			name:     "wrapped invalid mapping",
			err:      fmt.Errorf("compile places: %w", New(ErrCodeInvalidMapping, "a", nil)),
			expected: true,
		},
		{
			name:     "non-fatal error",
			err:      New(ErrCodeFileNotFound, "not found", nil),
			expected: false,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFatal(tt.err))
		})
	}
}

func TestGetCode_FindsWrappedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCodeUnknownSet, "no set named x", nil))

	assert.Equal(t, ErrCodeUnknownSet, GetCode(err))
	assert.Equal(t, CategoryValidation, GetCategory(err))
	assert.True(t, HasCode(err, ErrCodeUnknownSet))
	assert.False(t, HasCode(err, ErrCodeInvalidMapping))
	assert.Empty(t, GetCode(errors.New("plain")))
}
