package normalize

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

// CodeTokenizerName is the registered name of the identifier-aware tokenizer.
const CodeTokenizerName = "code_words"

// wordRegex matches letter/digit runs, underscores included for the first split.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// codeTokenizer splits camelCase, PascalCase and snake_case identifiers so
// that "parseHTTPRequest" and "parse_http_request" normalize to the same words.
type codeTokenizer struct{}

func codeTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &codeTokenizer{}, nil
}

// Tokenize implements analysis.Tokenizer.
func (t *codeTokenizer) Tokenize(input []byte) analysis.TokenStream {
	result := make(analysis.TokenStream, 0, 4)
	pos := 1

	for _, loc := range wordRegex.FindAllIndex(input, -1) {
		word := string(input[loc[0]:loc[1]])
		for _, span := range identifierSpans(word) {
			start, end := loc[0]+span[0], loc[0]+span[1]
			result = append(result, &analysis.Token{
				Term:     input[start:end],
				Start:    start,
				End:      end,
				Position: pos,
				Type:     analysis.AlphaNumeric,
			})
			pos++
		}
	}

	return result
}

// SplitIdentifier splits snake_case and camelCase identifiers.
// Examples:
//   - "getUserById" -> ["get", "User", "By", "Id"]
//   - "HTTPHandler" -> ["HTTP", "Handler"]
//   - "parse_http_request" -> ["parse", "http", "request"]
func SplitIdentifier(word string) []string {
	spans := identifierSpans(word)
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = word[s[0]:s[1]]
	}
	return parts
}

// identifierSpans returns byte ranges of the parts of word.
func identifierSpans(word string) [][2]int {
	var spans [][2]int
	start := -1
	var prev rune

	flush := func(end int) {
		if start >= 0 && end > start {
			spans = append(spans, [2]int{start, end})
		}
		start = -1
	}

	for i, r := range word {
		if r == '_' {
			flush(i)
			prev = r
			continue
		}
		if start < 0 {
			start = i
			prev = r
			continue
		}
		if unicode.IsUpper(r) {
			next, _ := utf8.DecodeRuneInString(word[i+utf8.RuneLen(r):])
			// Split if previous is lowercase OR next is lowercase (handles acronyms)
			if unicode.IsLower(prev) || unicode.IsLower(next) {
				flush(i)
				start = i
			}
		}
		prev = r
	}
	flush(len(word))

	return spans
}
