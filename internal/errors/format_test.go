package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_BasicError(t *testing.T) {
	// Given: a SynmapError
	err := New(ErrCodeFileNotFound, "file 'places.txt' not found", nil)

	// When: formatting for user (no debug)
	result := FormatForUser(err, false)

	// Then: contains message and code
	assert.Contains(t, result, "file 'places.txt' not found")
	assert.Contains(t, result, "[ERR_201_FILE_NOT_FOUND]")
}

func TestFormatForUser_WithSuggestion(t *testing.T) {
	err := New(ErrCodeInvalidMapping, "synonym mapping is invalid for a, b, c", nil).
		WithSuggestion("each group must name exactly two terms")

	result := FormatForUser(err, false)

	assert.Contains(t, result, "Suggestion:")
	assert.Contains(t, result, "exactly two terms")
}

func TestFormatForUser_DebugIncludesDetails(t *testing.T) {
	err := New(ErrCodeInvalidMapping, "bad group", errors.New("root cause")).
		WithDetail("line", "7")

	plain := FormatForUser(err, false)
	debug := FormatForUser(err, true)

	assert.NotContains(t, plain, "line: 7")
	assert.Contains(t, debug, "line: 7")
	assert.Contains(t, debug, "cause: root cause")
}

func TestFormatForUser_StandardError(t *testing.T) {
	err := errors.New("something went wrong")

	assert.Equal(t, "something went wrong", FormatForUser(err, false))
	assert.Empty(t, FormatForUser(nil, false))
}

func TestFormatForCLI_IncludesHintAndCode(t *testing.T) {
	err := New(ErrCodeUnknownSet, "no synonym set named \"x\"", nil).
		WithSuggestion("run 'synmap check' to list configured sets")

	result := FormatForCLI(err)

	assert.Contains(t, result, "Error: no synonym set named \"x\"")
	assert.Contains(t, result, "Hint: run 'synmap check'")
	assert.Contains(t, result, "Code: ERR_404_UNKNOWN_SET")
}

func TestFormatForCLI_WrapsStandardError(t *testing.T) {
	result := FormatForCLI(errors.New("disk on fire"))

	assert.Contains(t, result, "disk on fire")
	assert.Contains(t, result, ErrCodeInternal)
}

func TestFormatJSON_ContainsAllFields(t *testing.T) {
	err := New(ErrCodeInvalidMapping, "bad group", errors.New("cause")).
		WithDetail("group", "a").
		WithSuggestion("add a second term")

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ErrCodeInvalidMapping, decoded["code"])
	assert.Equal(t, "VALIDATION", decoded["category"])
	assert.Equal(t, "FATAL", decoded["severity"])
	assert.Equal(t, "cause", decoded["cause"])
	assert.Equal(t, "add a second term", decoded["suggestion"])
}

func TestFormatForLog_FlattensDetails(t *testing.T) {
	err := New(ErrCodeInvalidMapping, "bad group", nil).WithDetail("line", "2")

	fields := FormatForLog(err)

	assert.Equal(t, ErrCodeInvalidMapping, fields["error_code"])
	assert.Equal(t, "2", fields["detail_line"])
	assert.Nil(t, FormatForLog(nil))
	assert.Equal(t, map[string]any{"error": "x"}, FormatForLog(errors.New("x")))
}
