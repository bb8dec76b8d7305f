package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/synonym"
)

// StoredSet is a compiled synonym set as persisted.
type StoredSet struct {
	Name       string
	Options    synonym.Options
	Edges      []synonym.Edge
	CompiledAt time.Time
}

// SetSummary describes a stored set without its edges.
type SetSummary struct {
	Name       string          `json:"name"`
	Options    synonym.Options `json:"options"`
	EdgeCount  int             `json:"edge_count"`
	CompiledAt time.Time       `json:"compiled_at"`
}

// EdgeStore persists compiled synonym sets in SQLite.
// Writers in other processes are serialized through a FileLock next to the
// database; readers rely on WAL mode.
type EdgeStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	lock   *FileLock
	closed bool
	now    func() time.Time
}

// Open opens (or creates) the edge store at path.
// If path is empty, an in-memory store is created for testing.
func Open(path string) (*EdgeStore, error) {
	var dsn string
	var lock *FileLock
	if path == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, synerr.New(synerr.ErrCodeStoreFailed,
				fmt.Sprintf("failed to create directory %s", dir), err)
		}
		if err := validateIntegrity(path); err != nil {
			slog.Warn("edge_store_corrupted",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil, synerr.New(synerr.ErrCodeStoreFailed, "edge store is corrupted", err).
				WithDetail("path", path).
				WithSuggestion("Remove the database file and recompile your synonym sets")
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
		lock = NewFileLock(path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, synerr.New(synerr.ErrCodeStoreFailed, "failed to open database", err)
	}

	// Single writer to prevent lock contention; in-memory databases also
	// need the one connection to stay alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// modernc.org/sqlite may ignore DSN params, so pragmas are set explicitly
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, synerr.New(synerr.ErrCodeStoreFailed, "failed to set pragma", err).
				WithDetail("pragma", pragma)
		}
	}

	s := &EdgeStore{db: db, path: path, lock: lock, now: time.Now}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, synerr.New(synerr.ErrCodeStoreFailed, "failed to initialize schema", err)
	}
	return s, nil
}

// validateIntegrity checks an existing database before opening it.
// A missing file is valid and will be created.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

func (s *EdgeStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS synonym_sets (
		name        TEXT PRIMARY KEY,
		expand      INTEGER NOT NULL,
		dedup       INTEGER NOT NULL,
		edge_count  INTEGER NOT NULL,
		compiled_at INTEGER NOT NULL
	);

	-- seq preserves insertion order, which fixes output order per input
	CREATE TABLE IF NOT EXISTS synonym_edges (
		set_name         TEXT NOT NULL REFERENCES synonym_sets(name) ON DELETE CASCADE,
		seq              INTEGER NOT NULL,
		input            TEXT NOT NULL,
		output           TEXT NOT NULL,
		include_original INTEGER NOT NULL,
		PRIMARY KEY (set_name, seq)
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database path, empty for in-memory stores.
func (s *EdgeStore) Path() string {
	return s.path
}

// Save replaces the named set with edges in a single transaction.
func (s *EdgeStore) Save(ctx context.Context, name string, opts synonym.Options, edges []synonym.Edge) error {
	if name == "" {
		return synerr.ValidationError("synonym set name is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := deleteSet(ctx, tx, name); err != nil {
		return storeError("failed to replace set "+name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO synonym_sets(name, expand, dedup, edge_count, compiled_at) VALUES (?, ?, ?, ?, ?)`,
		name, opts.Expand, opts.Dedup, len(edges), s.now().UnixMilli()); err != nil {
		return storeError("failed to insert set "+name, err)
	}

	insertStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO synonym_edges(set_name, seq, input, output, include_original) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return storeError("failed to prepare edge statement", err)
	}
	defer insertStmt.Close()

	for seq, e := range edges {
		if _, err := insertStmt.ExecContext(ctx, name, seq, string(e.Input), string(e.Output), e.IncludeOriginal); err != nil {
			return storeError(fmt.Sprintf("failed to insert edge %d of set %s", seq, name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeError("failed to commit set "+name, err)
	}

	slog.Debug("synonym_set_saved",
		slog.String("set", name),
		slog.Int("edges", len(edges)),
		slog.String("path", s.path))
	return nil
}

// Load returns the named set. Unknown names fail with ERR_404_UNKNOWN_SET.
func (s *EdgeStore) Load(ctx context.Context, name string) (*StoredSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errClosed()
	}

	var (
		set        = StoredSet{Name: name}
		edgeCount  int
		compiledAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT expand, dedup, edge_count, compiled_at FROM synonym_sets WHERE name = ?`, name).
		Scan(&set.Options.Expand, &set.Options.Dedup, &edgeCount, &compiledAt)
	if err == sql.ErrNoRows {
		return nil, unknownSet(name)
	}
	if err != nil {
		return nil, storeError("failed to load set "+name, err)
	}
	set.CompiledAt = time.UnixMilli(compiledAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT input, output, include_original FROM synonym_edges WHERE set_name = ? ORDER BY seq`, name)
	if err != nil {
		return nil, storeError("failed to query edges of set "+name, err)
	}
	defer rows.Close()

	set.Edges = make([]synonym.Edge, 0, edgeCount)
	for rows.Next() {
		var input, output string
		var e synonym.Edge
		if err := rows.Scan(&input, &output, &e.IncludeOriginal); err != nil {
			return nil, storeError("failed to scan edge", err)
		}
		e.Input, e.Output = synonym.Term(input), synonym.Term(output)
		set.Edges = append(set.Edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to read edges of set "+name, err)
	}
	return &set, nil
}

// List returns a summary of every stored set, ordered by name.
func (s *EdgeStore) List(ctx context.Context) ([]SetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errClosed()
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, expand, dedup, edge_count, compiled_at FROM synonym_sets ORDER BY name`)
	if err != nil {
		return nil, storeError("failed to list sets", err)
	}
	defer rows.Close()

	var sets []SetSummary
	for rows.Next() {
		var sum SetSummary
		var compiledAt int64
		if err := rows.Scan(&sum.Name, &sum.Options.Expand, &sum.Options.Dedup, &sum.EdgeCount, &compiledAt); err != nil {
			return nil, storeError("failed to scan set", err)
		}
		sum.CompiledAt = time.UnixMilli(compiledAt)
		sets = append(sets, sum)
	}
	return sets, rows.Err()
}

// Delete removes the named set and its edges. Deleting an unknown set fails
// with ERR_404_UNKNOWN_SET.
func (s *EdgeStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	unlock, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := deleteSet(ctx, tx, name)
	if err != nil {
		return storeError("failed to delete set "+name, err)
	}
	if n == 0 {
		return unknownSet(name)
	}
	if err := tx.Commit(); err != nil {
		return storeError("failed to commit delete of set "+name, err)
	}
	return nil
}

// deleteSet removes a set and its edges, returning how many sets matched.
func deleteSet(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM synonym_edges WHERE set_name = ?`, name); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM synonym_sets WHERE name = ?`, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the store. It is idempotent.
func (s *EdgeStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	// Checkpoint before close to ensure durability
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

func (s *EdgeStore) acquire(ctx context.Context) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}
	if err := s.lock.LockContext(ctx); err != nil {
		return nil, err
	}
	return func() { _ = s.lock.Unlock() }, nil
}

func errClosed() error {
	return synerr.New(synerr.ErrCodeStoreFailed, "edge store is closed", nil)
}

func storeError(msg string, cause error) error {
	return synerr.New(synerr.ErrCodeStoreFailed, msg, cause)
}

func unknownSet(name string) error {
	return synerr.New(synerr.ErrCodeUnknownSet, fmt.Sprintf("synonym set %q not found", name), nil).
		WithDetail("set", name).
		WithSuggestion("Run 'synmap sets' to list stored sets")
}
