// Package normalize provides the bleve analyzers used to normalize synonym
// terms, plus the identifier tokenizer and accent folding filter they use.
//
// Everything here is registered with the bleve registry at init, so the
// analyzers can also be referenced by name from index mappings.
package normalize

import (
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/registry"
)

// Registered analyzer names.
const (
	// WhitespaceAnalyzer splits on whitespace and lowercases.
	WhitespaceAnalyzer = "synonym_whitespace"
	// CodeAnalyzer splits identifiers (camelCase, snake_case) and lowercases.
	CodeAnalyzer = "synonym_code"
	// KeywordAnalyzer keeps the whole term as one lowercased token.
	KeywordAnalyzer = "synonym_keyword"
	// FoldedAnalyzer is WhitespaceAnalyzer plus accent folding.
	FoldedAnalyzer = "synonym_folded"

	// DefaultAnalyzer is used when no analyzer is configured.
	DefaultAnalyzer = WhitespaceAnalyzer
)

type analyzerSpec struct {
	tokenizer string
	filters   []string
}

var builtinAnalyzers = map[string]analyzerSpec{
	WhitespaceAnalyzer: {tokenizer: whitespace.Name, filters: []string{lowercase.Name}},
	CodeAnalyzer:       {tokenizer: CodeTokenizerName, filters: []string{lowercase.Name}},
	KeywordAnalyzer:    {tokenizer: single.Name, filters: []string{lowercase.Name}},
	FoldedAnalyzer:     {tokenizer: whitespace.Name, filters: []string{lowercase.Name, FoldAccentsFilterName}},
}

func init() {
	_ = registry.RegisterTokenizer(CodeTokenizerName, codeTokenizerConstructor)
	_ = registry.RegisterTokenFilter(FoldAccentsFilterName, foldAccentsFilterConstructor)

	for name, spec := range builtinAnalyzers {
		_ = registry.RegisterAnalyzer(name, spec.constructor())
	}
}

func (s analyzerSpec) constructor() registry.AnalyzerConstructor {
	return func(config map[string]interface{}, cache *registry.Cache) (analysis.Analyzer, error) {
		tokenizer, err := cache.TokenizerNamed(s.tokenizer)
		if err != nil {
			return nil, err
		}
		filters := make([]analysis.TokenFilter, 0, len(s.filters))
		for _, name := range s.filters {
			f, err := cache.TokenFilterNamed(name)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		}
		return &analysis.DefaultAnalyzer{
			Tokenizer:    tokenizer,
			TokenFilters: filters,
		}, nil
	}
}

// BuiltinAnalyzers lists the analyzers registered by this package.
func BuiltinAnalyzers() []string {
	names := make([]string, 0, len(builtinAnalyzers))
	for name := range builtinAnalyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exists reports whether name resolves to any registered bleve analyzer.
func Exists(name string) bool {
	_, err := registry.NewCache().AnalyzerNamed(name)
	return err == nil
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
