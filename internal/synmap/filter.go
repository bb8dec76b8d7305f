package synmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/normalize"
	"github.com/Aman-CERP/synmap/internal/synonym"
)

// FilterName is the bleve token filter type that applies inline synonym rules.
//
// Config keys:
//   - "synonyms": rule text, a string or a list of lines
//   - "expand":   bool, default false
//   - "dedup":    bool, default true
//   - "analyzer": analyzer normalizing the rule terms, default synonym_whitespace
const FilterName = "synonym_graph"

func init() {
	_ = registry.RegisterTokenFilter(FilterName, filterConstructor)
}

// Filter rewrites a token stream through a Map. At each token it takes the
// longest run of consecutive tokens that is an input term, emits every output
// at the run's position (words of a multi-word output on following positions)
// and then the run itself if the entry keeps originals.
type Filter struct {
	m *Map
}

var _ analysis.TokenFilter = (*Filter)(nil)

// NewFilter creates a filter over m.
func NewFilter(m *Map) *Filter {
	return &Filter{m: m}
}

// Filter implements analysis.TokenFilter.
func (f *Filter) Filter(input analysis.TokenStream) analysis.TokenStream {
	if f.m == nil || f.m.Len() == 0 || len(input) == 0 {
		return input
	}

	out := make(analysis.TokenStream, 0, len(input))
	for i := 0; i < len(input); {
		n, entry, ok := f.longestMatch(input, i)
		if !ok {
			out = append(out, input[i])
			i++
			continue
		}

		run := input[i : i+n]
		first, last := run[0], run[n-1]
		for _, output := range entry.Outputs {
			for k, word := range output.Words() {
				out = append(out, &analysis.Token{
					Term:     []byte(word),
					Start:    first.Start,
					End:      last.End,
					Position: first.Position + k,
					Type:     first.Type,
				})
			}
		}
		if entry.KeepOriginal {
			out = append(out, run...)
		}
		i += n
	}
	return out
}

func (f *Filter) longestMatch(tokens analysis.TokenStream, i int) (int, Entry, bool) {
	limit := f.m.MaxInputWords()
	if rest := len(tokens) - i; rest < limit {
		limit = rest
	}

	// only runs without position gaps can match a phrase
	run := 1
	for run < limit && tokens[i+run].Position == tokens[i+run-1].Position+1 {
		run++
	}

	words := make([]string, run)
	for k := 0; k < run; k++ {
		words[k] = string(tokens[i+k].Term)
	}
	for n := run; n >= 1; n-- {
		if e, ok := f.m.Lookup(synonym.JoinWords(words[:n]...)); ok {
			return n, e, true
		}
	}
	return 0, Entry{}, false
}

func filterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	rules, err := rulesOption(config["synonyms"])
	if err != nil {
		return nil, err
	}
	expand, err := boolOption(config, "expand", false)
	if err != nil {
		return nil, err
	}
	dedup, err := boolOption(config, "dedup", true)
	if err != nil {
		return nil, err
	}
	analyzerName, _ := config["analyzer"].(string)

	n, err := normalize.Named(cache, analyzerName)
	if err != nil {
		return nil, err
	}
	m, err := Compile(strings.NewReader(rules), synonym.Options{Expand: expand, Dedup: dedup}, n)
	if err != nil {
		return nil, err
	}
	return NewFilter(m), nil
}

func rulesOption(v interface{}) (string, error) {
	switch rules := v.(type) {
	case nil:
		return "", nil
	case string:
		return rules, nil
	case []string:
		return strings.Join(rules, "\n"), nil
	case []interface{}:
		lines := make([]string, 0, len(rules))
		for _, line := range rules {
			s, ok := line.(string)
			if !ok {
				return "", synerr.ConfigError(fmt.Sprintf("%s: synonyms entries must be strings, got %T", FilterName, line), nil)
			}
			lines = append(lines, s)
		}
		return strings.Join(lines, "\n"), nil
	default:
		return "", synerr.ConfigError(fmt.Sprintf("%s: synonyms must be a string or list of strings, got %T", FilterName, v), nil)
	}
}

func boolOption(config map[string]interface{}, key string, def bool) (bool, error) {
	switch v := config[key].(type) {
	case nil:
		return def, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, synerr.ConfigError(fmt.Sprintf("%s: %s must be a boolean, got %q", FilterName, key, v), err)
		}
		return b, nil
	default:
		return false, synerr.ConfigError(fmt.Sprintf("%s: %s must be a boolean, got %T", FilterName, key, v), nil)
	}
}
