package index

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
	"github.com/blevesearch/bleve/v2/search"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/normalize"
	"github.com/Aman-CERP/synmap/internal/synmap"
	"github.com/Aman-CERP/synmap/internal/synset"
)

const (
	// TextAnalyzerName is the default analyzer of a synonym index:
	// whitespace tokenizer, to_lower, then the synonym filter.
	TextAnalyzerName = "synonym_text"

	// synonymFilterName names the configured synonym_graph filter instance.
	synonymFilterName = "synonyms"

	contentField = "content"
)

// internal key holding the hash of the mapping an index was built with
var rulesHashKey = []byte("synmap_rules_hash")

// Document is a unit of text to index.
type Document struct {
	ID      string
	Content string
}

// Result is a search hit.
type Result struct {
	DocID        string
	Score        float64
	MatchedTerms []string
}

// Index is a bleve index whose text is expanded through a synonym set at
// index and query time.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

type bleveDocument struct {
	Content string `json:"content"`
}

// New creates (or opens) a synonym index for src. If path is empty the index
// lives in memory. An on-disk index built with different synonym rules is
// cleared and recreated, since its terms no longer match queries.
func New(path string, src synset.Source) (*Index, error) {
	indexMapping, hash, err := createIndexMapping(src)
	if err != nil {
		return nil, err
	}

	var idx bleve.Index
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		idx, err = openOrCreate(path, indexMapping, hash)
	}
	if err != nil {
		return nil, synerr.New(synerr.ErrCodeIndexFailed, "failed to create/open index", err).
			WithDetail("path", path)
	}

	if err := idx.SetInternal(rulesHashKey, hash); err != nil {
		_ = idx.Close()
		return nil, synerr.New(synerr.ErrCodeIndexFailed, "failed to record synonym rules hash", err)
	}

	return &Index{index: idx, path: path}, nil
}

func openOrCreate(path string, indexMapping mapping.IndexMapping, hash []byte) (bleve.Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if validErr := validateIndexIntegrity(path); validErr != nil {
		slog.Warn("synonym_index_corrupted",
			slog.String("path", path),
			slog.String("error", validErr.Error()))
		if err := clearIndex(path); err != nil {
			return nil, err
		}
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		return bleve.New(path, indexMapping)
	}
	if err != nil {
		slog.Warn("synonym_index_open_failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		if err := clearIndex(path); err != nil {
			return nil, err
		}
		return bleve.New(path, indexMapping)
	}

	stored, err := idx.GetInternal(rulesHashKey)
	if err == nil && bytes.Equal(stored, hash) {
		return idx, nil
	}

	slog.Info("synonym_index_rules_changed",
		slog.String("path", path),
		slog.String("reason", "synonym rules changed, please reindex"))
	_ = idx.Close()
	if err := clearIndex(path); err != nil {
		return nil, err
	}
	return bleve.New(path, indexMapping)
}

func clearIndex(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("cannot clear index at %s: %w", path, err)
	}
	return nil
}

// validateIndexIntegrity checks index_meta.json of an existing index.
// A missing index is valid and will be created.
func validateIndexIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(path, "index_meta.json"))
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("index_meta.json is empty")
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}
	return nil
}

// createIndexMapping declares the synonym filter and text analyzer and
// returns a hash of their configuration.
func createIndexMapping(src synset.Source) (*mapping.IndexMappingImpl, []byte, error) {
	rules, err := src.Rules()
	if err != nil {
		return nil, nil, err
	}
	// bleve flattens constructor errors, so check the rules up front
	n, err := normalize.Named(registry.NewCache(), src.Analyzer)
	if err != nil {
		return nil, nil, err
	}
	if _, err := synmap.Compile(strings.NewReader(rules), src.Options(), n); err != nil {
		return nil, nil, err
	}

	filterConfig := map[string]interface{}{
		"type":     synmap.FilterName,
		"synonyms": rules,
		"expand":   src.Expand,
		"dedup":    src.Dedup,
	}
	if src.Analyzer != "" {
		filterConfig["analyzer"] = src.Analyzer
	}
	analyzerConfig := map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{lowercase.Name, synonymFilterName},
	}

	indexMapping := bleve.NewIndexMapping()
	if err := indexMapping.AddCustomTokenFilter(synonymFilterName, filterConfig); err != nil {
		return nil, nil, wrapMappingError(err)
	}
	if err := indexMapping.AddCustomAnalyzer(TextAnalyzerName, analyzerConfig); err != nil {
		return nil, nil, wrapMappingError(err)
	}
	indexMapping.DefaultAnalyzer = TextAnalyzerName

	raw, err := json.Marshal([]interface{}{filterConfig, analyzerConfig})
	if err != nil {
		return nil, nil, synerr.InternalError("failed to hash index mapping", err)
	}
	sum := sha256.Sum256(raw)
	return indexMapping, sum[:], nil
}

func wrapMappingError(err error) error {
	return synerr.New(synerr.ErrCodeIndexFailed, "failed to build index mapping", err)
}

// Index adds or replaces documents.
func (x *Index) Index(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return errClosed()
	}

	batch := x.index.NewBatch()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(doc.ID, bleveDocument{Content: doc.Content}); err != nil {
			return synerr.New(synerr.ErrCodeIndexFailed, "failed to index document "+doc.ID, err)
		}
	}
	if err := x.index.Batch(batch); err != nil {
		return synerr.New(synerr.ErrCodeIndexFailed, "failed to execute batch", err)
	}
	return nil
}

// Search returns up to limit documents matching query, best first. The query
// runs through the same synonym analyzer as the documents.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, errClosed()
	}
	if strings.TrimSpace(query) == "" {
		return []*Result{}, nil
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField(contentField)

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = limit
	req.IncludeLocations = true

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, synerr.New(synerr.ErrCodeSearchFailed, "search failed", err).
			WithDetail("query", query)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, &Result{
			DocID:        hit.ID,
			Score:        hit.Score,
			MatchedTerms: matchedTerms(hit),
		})
	}
	return results, nil
}

// Count returns the number of indexed documents.
func (x *Index) Count() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return 0, errClosed()
	}
	return x.index.DocCount()
}

// Close closes the index. It is idempotent.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}

func matchedTerms(hit *search.DocumentMatch) []string {
	terms := make([]string, 0, len(hit.Locations[contentField]))
	for term := range hit.Locations[contentField] {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func errClosed() error {
	return synerr.New(synerr.ErrCodeIndexFailed, "index is closed", nil)
}
