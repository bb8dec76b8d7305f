package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/synonym"
)

func placeEdges() []synonym.Edge {
	return []synonym.Edge{
		{Input: "plz", Output: "plaza", IncludeOriginal: true},
		{Input: "plaza", Output: "plz", IncludeOriginal: true},
		{Input: synonym.JoinWords("new", "york"), Output: "nyc", IncludeOriginal: true},
	}
}

func openTestStore(t *testing.T) *EdgeStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "synonyms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEdgeStore_SaveLoad(t *testing.T) {
	// Given: a store and a fixed clock
	s := openTestStore(t)
	compiled := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return compiled }
	opts := synonym.Options{Expand: true, Dedup: true}

	// When: saving and loading a set
	require.NoError(t, s.Save(context.Background(), "places", opts, placeEdges()))
	got, err := s.Load(context.Background(), "places")

	// Then: options, edge order and multi-word terms survive
	require.NoError(t, err)
	assert.Equal(t, "places", got.Name)
	assert.Equal(t, opts, got.Options)
	assert.Equal(t, placeEdges(), got.Edges)
	assert.True(t, compiled.Equal(got.CompiledAt))
}

func TestEdgeStore_SaveReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "places", synonym.Options{Expand: true}, placeEdges()))

	replacement := []synonym.Edge{{Input: "a", Output: "a"}}
	require.NoError(t, s.Save(ctx, "places", synonym.Options{Dedup: true}, replacement))

	got, err := s.Load(ctx, "places")
	require.NoError(t, err)
	assert.Equal(t, replacement, got.Edges)
	assert.Equal(t, synonym.Options{Dedup: true}, got.Options)
}

func TestEdgeStore_EmptySet(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save(context.Background(), "empty", synonym.Options{}, nil))

	got, err := s.Load(context.Background(), "empty")

	require.NoError(t, err)
	assert.Empty(t, got.Edges)
}

func TestEdgeStore_List(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "zeta", synonym.Options{Dedup: true}, placeEdges()[:1]))
	require.NoError(t, s.Save(ctx, "alpha", synonym.Options{Expand: true}, placeEdges()))

	sets, err := s.List(ctx)

	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "alpha", sets[0].Name)
	assert.Equal(t, 3, sets[0].EdgeCount)
	assert.True(t, sets[0].Options.Expand)
	assert.Equal(t, "zeta", sets[1].Name)
	assert.Equal(t, 1, sets[1].EdgeCount)
}

func TestEdgeStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "places", synonym.Options{}, placeEdges()))

	require.NoError(t, s.Delete(ctx, "places"))

	_, err := s.Load(ctx, "places")
	assert.True(t, synerr.HasCode(err, synerr.ErrCodeUnknownSet))
	assert.True(t, synerr.HasCode(s.Delete(ctx, "places"), synerr.ErrCodeUnknownSet))

	var edges int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM synonym_edges`).Scan(&edges))
	assert.Zero(t, edges)
}

func TestEdgeStore_UnknownSet(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load(context.Background(), "missing")

	require.Error(t, err)
	e, ok := synerr.As(err)
	require.True(t, ok)
	assert.Equal(t, synerr.ErrCodeUnknownSet, e.Code)
	assert.Equal(t, "missing", e.Details["set"])
}

func TestEdgeStore_RequiresName(t *testing.T) {
	s := openTestStore(t)

	err := s.Save(context.Background(), "", synonym.Options{}, nil)

	assert.True(t, synerr.HasCode(err, synerr.ErrCodeInvalidInput))
}

func TestEdgeStore_InMemory(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), "mem", synonym.Options{}, placeEdges()))
	got, err := s.Load(context.Background(), "mem")

	require.NoError(t, err)
	assert.Len(t, got.Edges, 3)
	assert.Empty(t, s.Path())
}

func TestEdgeStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "synonyms.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "places", synonym.Options{Expand: true}, placeEdges()))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(context.Background(), "places")
	require.NoError(t, err)
	assert.Equal(t, placeEdges(), got.Edges)
}

func TestEdgeStore_ClosedStore(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	_, err := s.List(context.Background())
	assert.True(t, synerr.HasCode(err, synerr.ErrCodeStoreFailed))
	err = s.Save(context.Background(), "x", synonym.Options{}, nil)
	assert.True(t, synerr.HasCode(err, synerr.ErrCodeStoreFailed))
}

func TestEdgeStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a sqlite database, just text padding it out"), 0644))

	_, err := Open(path)

	assert.True(t, synerr.HasCode(err, synerr.ErrCodeStoreFailed))
}

func TestEdgeStore_SaveWaitsForLock(t *testing.T) {
	// Given: another holder of the store's lock
	s := openTestStore(t)
	other := NewFileLock(s.Path())
	acquired, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, acquired)
	defer func() { _ = other.Unlock() }()

	// When: saving with a short deadline
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err = s.Save(ctx, "places", synonym.Options{}, placeEdges())

	// Then: the save gives up with a lock error
	assert.True(t, synerr.HasCode(err, synerr.ErrCodeLockFailed))
}
