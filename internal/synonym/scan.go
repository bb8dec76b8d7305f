package synonym

import (
	"strings"
	"unicode/utf8"
)

const (
	// GroupSeparator separates mapping groups within a rule line.
	GroupSeparator = "|"

	// TermSeparator separates the two terms of a mapping group.
	TermSeparator = ","

	escapeChar = '\\'
)

// SplitEscaped splits s on every unescaped occurrence of sep.
//
// A backslash protects the character after it from starting a separator;
// both are copied to the output so Unescape can resolve them later. A
// backslash at the very end of s is kept as is. Empty segments are dropped,
// so the result never contains "" and is empty for blank input.
func SplitEscaped(s, sep string) []string {
	parts := make([]string, 0, 2)
	var sb strings.Builder

	for pos := 0; pos < len(s); {
		if sep != "" && strings.HasPrefix(s[pos:], sep) {
			if sb.Len() > 0 {
				parts = append(parts, sb.String())
				sb.Reset()
			}
			pos += len(sep)
			continue
		}

		_, size := utf8.DecodeRuneInString(s[pos:])
		isEscape := s[pos] == escapeChar
		sb.WriteString(s[pos : pos+size])
		pos += size

		if isEscape && pos < len(s) {
			_, size = utf8.DecodeRuneInString(s[pos:])
			sb.WriteString(s[pos : pos+size])
			pos += size
		}
	}

	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}

	return parts
}

// Unescape replaces every "\X" with "X", left to right. A trailing lone
// backslash is kept. Strings without a backslash are returned unchanged.
func Unescape(s string) string {
	if strings.IndexByte(s, escapeChar) < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == escapeChar && i < len(s)-1 {
			i++
			ch = s[i]
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}
