package normalize

import (
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldAccentsFilterName is the registered name of the accent folding filter.
const FoldAccentsFilterName = "fold_accents"

// foldAccentsFilter strips combining marks: "plaça" -> "placa".
type foldAccentsFilter struct{}

func foldAccentsFilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	return &foldAccentsFilter{}, nil
}

// Filter implements analysis.TokenFilter.
func (f *foldAccentsFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	// transform chains are stateful, one per call
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	for _, token := range input {
		folded, _, err := transform.Bytes(folder, token.Term)
		if err == nil {
			token.Term = folded
		}
	}
	return input
}
