package synset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2/registry"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/normalize"
	"github.com/Aman-CERP/synmap/internal/store"
	"github.com/Aman-CERP/synmap/internal/synmap"
	"github.com/Aman-CERP/synmap/internal/watcher"
)

// DefaultCacheSize is the default number of compiled maps kept in memory.
const DefaultCacheSize = 64

// StoredSets loads compiled sets persisted by an edge store.
type StoredSets interface {
	Load(ctx context.Context, name string) (*store.StoredSet, error)
}

// Registry resolves synonym set names to compiled maps.
// It is safe for concurrent use.
type Registry struct {
	sources  map[string]Source
	names    []string
	cache    *lru.Cache[string, *synmap.Map]
	stored   StoredSets
	debounce time.Duration

	// bleve caches are not safe for concurrent use
	analyzersMu sync.Mutex
	analyzers   *registry.Cache
}

// Option configures a Registry.
type Option func(*Registry)

// WithCacheSize sets how many compiled maps are cached.
func WithCacheSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.cache, _ = lru.New[string, *synmap.Map](n)
		}
	}
}

// WithStore makes names that are not configured fall back to stored sets.
func WithStore(s StoredSets) Option {
	return func(r *Registry) { r.stored = s }
}

// WithDebounce sets the debounce window used by Watch.
func WithDebounce(d time.Duration) Option {
	return func(r *Registry) { r.debounce = d }
}

// New creates a registry over sources. Set names must be unique.
func New(sources []Source, opts ...Option) (*Registry, error) {
	cache, _ := lru.New[string, *synmap.Map](DefaultCacheSize)
	r := &Registry{
		sources:   make(map[string]Source, len(sources)),
		cache:     cache,
		analyzers: registry.NewCache(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, src := range sources {
		if err := src.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.sources[src.Name]; dup {
			return nil, synerr.ValidationError(fmt.Sprintf("duplicate synonym set %q", src.Name), nil)
		}
		r.sources[src.Name] = src
		r.names = append(r.names, src.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Names returns the configured set names, sorted.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Source returns the configured source for name.
func (r *Registry) Source(name string) (Source, bool) {
	src, ok := r.sources[name]
	return src, ok
}

// Get returns the compiled map for name. Configured sets are compiled on
// demand and cached by content, so an edited file compiles again. Names that
// are not configured are loaded from the store when one is attached.
func (r *Registry) Get(ctx context.Context, name string) (*synmap.Map, error) {
	src, ok := r.sources[name]
	if !ok {
		return r.getStored(ctx, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.compile(src)
}

func (r *Registry) compile(src Source) (*synmap.Map, error) {
	rules, err := src.Rules()
	if err != nil {
		return nil, err
	}

	key := cacheKey(src, rules)
	if m, ok := r.cache.Get(key); ok {
		return m, nil
	}

	n, err := r.normalizer(src.Analyzer)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := synmap.Compile(strings.NewReader(rules), src.Options(), n)
	if err != nil {
		if e, ok := synerr.As(err); ok {
			e.WithDetail("set", src.Name)
		}
		return nil, err
	}

	r.cache.Add(key, m)
	slog.Info("synonym_set_compiled",
		slog.String("set", src.Name),
		slog.Int("inputs", m.Len()),
		slog.Int("edges", m.EdgeCount()),
		slog.Duration("duration", time.Since(start)))
	return m, nil
}

func (r *Registry) normalizer(analyzer string) (*normalize.Normalizer, error) {
	r.analyzersMu.Lock()
	defer r.analyzersMu.Unlock()
	return normalize.Named(r.analyzers, analyzer)
}

func (r *Registry) getStored(ctx context.Context, name string) (*synmap.Map, error) {
	if r.stored == nil {
		return nil, synerr.New(synerr.ErrCodeUnknownSet, fmt.Sprintf("synonym set %q is not configured", name), nil).
			WithDetail("set", name).
			WithSuggestion("Add the set to .synmap.yaml or store it with 'synmap compile --name'")
	}
	set, err := r.stored.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return synmap.FromEdges(set.Edges, set.Options.Dedup)
}

// cacheKey hashes everything that affects the compiled map.
func cacheKey(src Source, rules string) string {
	h := sha256.New()
	for _, part := range []string{
		src.Name,
		strconv.FormatBool(src.Expand),
		strconv.FormatBool(src.Dedup),
		src.Analyzer,
		rules,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// LoadAll compiles every configured set concurrently. The first failure
// cancels the rest and is returned.
func (r *Registry) LoadAll(ctx context.Context) (map[string]*synmap.Map, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	maps := make(map[string]*synmap.Map, len(r.names))
	for _, name := range r.names {
		g.Go(func() error {
			m, err := r.Get(ctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			maps[name] = m
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return maps, nil
}

// Reload reports a recompiled set after its rule file changed.
type Reload struct {
	Name string
	Map  *synmap.Map
	Err  error
}

// Watch recompiles file-backed sets when their files change and reports each
// result to onReload. It blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context, onReload func(Reload)) error {
	byPath := make(map[string][]string)
	var paths []string
	for _, name := range r.names {
		src := r.sources[name]
		if src.Path == "" {
			continue
		}
		if _, seen := byPath[src.Path]; !seen {
			paths = append(paths, src.Path)
		}
		byPath[src.Path] = append(byPath[src.Path], name)
	}
	if len(paths) == 0 {
		return synerr.ValidationError("no file-backed synonym sets to watch", nil)
	}

	opts := watcher.DefaultOptions()
	if r.debounce > 0 {
		opts.DebounceWindow = r.debounce
	}
	w, err := watcher.NewFileWatcher(paths, opts)
	if err != nil {
		return synerr.IOError("failed to watch synonym files", err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	slog.Info("watching_synonym_sets", slog.Int("files", len(paths)))
	errs := w.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("synonym_watch_error", slog.String("error", err.Error()))
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			for _, event := range batch {
				for _, name := range byPath[event.Path] {
					m, err := r.Get(ctx, name)
					if err != nil {
						slog.Warn("synonym_set_reload_failed",
							slog.String("set", name),
							slog.String("op", event.Operation.String()),
							slog.String("error", err.Error()))
					}
					onReload(Reload{Name: name, Map: m, Err: err})
				}
			}
		}
	}
}
