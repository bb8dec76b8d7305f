package index

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/registry"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/synmap"
)

// NewTextAnalyzer builds the synonym_text chain around an already compiled
// map, for inspecting what a set does to text without an index.
func NewTextAnalyzer(m *synmap.Map) (analysis.Analyzer, error) {
	cache := registry.NewCache()
	tokenizer, err := cache.TokenizerNamed(whitespace.Name)
	if err != nil {
		return nil, synerr.InternalError("whitespace tokenizer unavailable", err)
	}
	lower, err := cache.TokenFilterNamed(lowercase.Name)
	if err != nil {
		return nil, synerr.InternalError("lowercase filter unavailable", err)
	}
	return &analysis.DefaultAnalyzer{
		Tokenizer:    tokenizer,
		TokenFilters: []analysis.TokenFilter{lower, synmap.NewFilter(m)},
	}, nil
}
