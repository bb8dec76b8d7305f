package normalize

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/synonym"
)

// Normalizer runs a bleve analyzer over raw synonym terms.
// It is safe for concurrent use when the wrapped analyzer is.
type Normalizer struct {
	name     string
	analyzer analysis.Analyzer
}

var _ synonym.Normalizer = (*Normalizer)(nil)

// New wraps analyzer; name is used in error messages only.
func New(name string, analyzer analysis.Analyzer) *Normalizer {
	return &Normalizer{name: name, analyzer: analyzer}
}

// Named resolves analyzer name from cache.
func Named(cache *registry.Cache, name string) (*Normalizer, error) {
	if name == "" {
		name = DefaultAnalyzer
	}
	a, err := cache.AnalyzerNamed(name)
	if err != nil {
		return nil, synerr.New(synerr.ErrCodeUnknownAnalyzer,
			fmt.Sprintf("unknown analyzer %q", name), err).
			WithSuggestion("use one of: " + joinNames(BuiltinAnalyzers()))
	}
	return New(name, a), nil
}

// Name returns the analyzer name.
func (n *Normalizer) Name() string {
	return n.name
}

// Normalize analyzes text and joins the resulting words with
// synonym.WordSeparator. It fails when the analyzer drops every token, emits
// an empty token, or leaves a position gap (e.g. a removed stop word), since
// none of those can be matched as a contiguous phrase later.
func (n *Normalizer) Normalize(text string) (synonym.Term, error) {
	tokens := n.analyzer.Analyze([]byte(text))
	if len(tokens) == 0 {
		return "", n.fail(text, "was analyzed to no tokens")
	}

	words := make([]string, 0, len(tokens))
	for i, token := range tokens {
		if len(token.Term) == 0 {
			return "", n.fail(text, "was analyzed to an empty token")
		}
		if bytes.IndexByte(token.Term, synonym.WordSeparator) >= 0 {
			return "", n.fail(text, "contains the word separator")
		}
		if i > 0 && token.Position != tokens[i-1].Position+1 {
			return "", n.fail(text, "was analyzed to a token with position increment "+
				strconv.Itoa(token.Position-tokens[i-1].Position)).
				WithDetail("token", string(token.Term))
		}
		words = append(words, string(token.Term))
	}

	return synonym.JoinWords(words...), nil
}

func (n *Normalizer) fail(text, reason string) *synerr.SynmapError {
	return synerr.New(synerr.ErrCodeNormalizationFailed,
		fmt.Sprintf("term %q %s", text, reason), nil).
		WithDetail("term", text).
		WithDetail("analyzer", n.name)
}
