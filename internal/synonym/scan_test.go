package synonym

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEscaped_PlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   string
		want  []string
	}{
		{name: "single term", input: "plaza", sep: ",", want: []string{"plaza"}},
		{name: "two terms", input: "a,b", sep: ",", want: []string{"a", "b"}},
		{name: "keeps surrounding spaces", input: "a, b", sep: ",", want: []string{"a", " b"}},
		{name: "group separator", input: "a, b|plz, plaza", sep: "|", want: []string{"a, b", "plz, plaza"}},
		{name: "empty input", input: "", sep: ",", want: []string{}},
		{name: "multi-char separator", input: "a=>b=>c", sep: "=>", want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitEscaped(tt.input, tt.sep))
		})
	}
}

func TestSplitEscaped_DropsEmptySegments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "consecutive separators", input: "a,,b", want: []string{"a", "b"}},
		{name: "leading separator", input: ",a,b", want: []string{"a", "b"}},
		{name: "trailing separator", input: "a,b,", want: []string{"a", "b"}},
		{name: "only separators", input: ",,,", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitEscaped(tt.input, ",")
			assert.Equal(t, tt.want, got)
			for _, part := range got {
				assert.NotEmpty(t, part)
			}
		})
	}
}

func TestSplitEscaped_EscapedSeparatorIsNotASplitPoint(t *testing.T) {
	// Given: a comma protected by a backslash
	input := `pie\,ix,pie-ix`

	// When: splitting on commas
	got := SplitEscaped(input, ",")

	// Then: the escaped comma stays inside the first segment, backslash included
	assert.Equal(t, []string{`pie\,ix`, "pie-ix"}, got)
}

func TestSplitEscaped_EscapedGroupSeparator(t *testing.T) {
	got := SplitEscaped(`a\|b, c|d, e`, "|")

	assert.Equal(t, []string{`a\|b, c`, "d, e"}, got)
}

func TestSplitEscaped_EscapedBackslashBeforeSeparator(t *testing.T) {
	// "\\," is an escaped backslash followed by a real separator
	got := SplitEscaped(`a\\,b`, ",")

	assert.Equal(t, []string{`a\\`, "b"}, got)
}

func TestSplitEscaped_TrailingBackslashIsKept(t *testing.T) {
	// Given: input ending in a lone backslash
	input := `a,b\`

	// When: splitting
	got := SplitEscaped(input, ",")

	// Then: the backslash survives in the last segment
	assert.Equal(t, []string{"a", `b\`}, got)
}

func TestSplitEscaped_OnlyBackslash(t *testing.T) {
	assert.Equal(t, []string{`\`}, SplitEscaped(`\`, ","))
}

func TestSplitEscaped_EscapesWholeRune(t *testing.T) {
	got := SplitEscaped(`caf\é,cafe`, ",")

	assert.Equal(t, []string{`caf\é`, "cafe"}, got)
}

func TestSplitEscaped_EmptySeparatorNeverSplits(t *testing.T) {
	assert.Equal(t, []string{"a,b"}, SplitEscaped("a,b", ""))
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no backslash", input: "plaza", want: "plaza"},
		{name: "empty", input: "", want: ""},
		{name: "escaped comma", input: `pie\,ix`, want: "pie,ix"},
		{name: "escaped pipe", input: `a\|b`, want: "a|b"},
		{name: "escaped backslash", input: `a\\b`, want: `a\b`},
		{name: "hex escape text", input: `pla\xE7a`, want: "plaxE7a"},
		{name: "trailing backslash", input: `b\`, want: `b\`},
		{name: "double trailing backslash", input: `b\\`, want: `b\`},
		{name: "escaped space", input: `\ a`, want: " a"},
		{name: "escaped multibyte", input: `caf\é`, want: "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unescape(tt.input))
		})
	}
}

func TestSplitThenUnescape_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		sep   string
	}{
		{name: "comma inside terms", left: "pie,ix", right: "a,b,c", sep: ","},
		{name: "pipe inside terms", left: "x|y", right: "z", sep: "|"},
		{name: "backslashes inside terms", left: `c:\dir`, right: `\`, sep: ","},
		{name: "plain terms", left: "plz", right: "plaza", sep: ","},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: both terms escaped for the separator
			input := escapeFor(tt.left, tt.sep) + tt.sep + escapeFor(tt.right, tt.sep)

			// When: splitting and unescaping
			parts := SplitEscaped(input, tt.sep)

			// Then: the original terms come back
			if assert.Len(t, parts, 2) {
				assert.Equal(t, tt.left, Unescape(parts[0]))
				assert.Equal(t, tt.right, Unescape(parts[1]))
			}
		})
	}
}

// escapeFor escapes backslashes and every character of sep.
func escapeFor(s, sep string) string {
	out := make([]rune, 0, len(s)*2)
	for _, r := range s {
		if r == '\\' || containsRune(sep, r) {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
