package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/normalize"
	"github.com/Aman-CERP/synmap/internal/synset"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// Defaults
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	cfg := NewConfig()

	// Then: all defaults are applied
	assert.Equal(t, 1, cfg.Version)
	assert.False(t, cfg.Defaults.Expand)
	assert.True(t, cfg.Defaults.Dedup)
	assert.Equal(t, normalize.WhitespaceAnalyzer, cfg.Defaults.Analyzer)
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.Equal(t, filepath.Join(".synmap", "synonyms.db"), cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	assert.Equal(t, 5, cfg.Logging.MaxFiles)
	assert.Empty(t, cfg.Sets)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".synmap", "synonyms.db"), cfg.StorePath())
}

// =============================================================================
// File loading
// =============================================================================

func TestLoad_YAMLFile(t *testing.T) {
	// Given: a config with defaults, sets and overrides
	dir := t.TempDir()
	writeConfig(t, dir, ".synmap.yaml", `
version: 1
defaults:
  expand: true
  analyzer: synonym_folded
sets:
  - name: places
    path: synonyms/places.txt
    dedup: false
  - name: inline
    synonyms: "a, b|plz, plaza"
    expand: false
    analyzer: synonym_keyword
cache:
  size: 8
store:
  path: /var/lib/synmap/synonyms.db
logging:
  level: debug
`)

	// When: loading
	cfg, err := Load(dir)

	// Then: file values win over defaults, absent keys keep defaults
	require.NoError(t, err)
	assert.True(t, cfg.Defaults.Expand)
	assert.True(t, cfg.Defaults.Dedup)
	assert.Equal(t, 8, cfg.Cache.Size)
	assert.Equal(t, "/var/lib/synmap/synonyms.db", cfg.StorePath())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)

	// And: sources inherit defaults unless overridden
	assert.Equal(t, []synset.Source{
		{
			Name:     "places",
			Path:     filepath.Join(dir, "synonyms", "places.txt"),
			Expand:   true,
			Dedup:    false,
			Analyzer: normalize.FoldedAnalyzer,
		},
		{
			Name:     "inline",
			Synonyms: "a, b|plz, plaza",
			Expand:   false,
			Dedup:    true,
			Analyzer: normalize.KeywordAnalyzer,
		},
	}, cfg.Sources())
}

func TestLoad_YMLFallback(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".synmap.yml", "cache:\n  size: 3\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Cache.Size)
}

func TestLoad_YAMLTakesPrecedenceOverYML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".synmap.yaml", "cache:\n  size: 7\n")
	writeConfig(t, dir, ".synmap.yml", "cache:\n  size: 3\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Cache.Size)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".synmap.yaml", "sets: [unclosed\n")

	_, err := Load(dir)

	assert.True(t, synerr.HasCode(err, synerr.ErrCodeConfigInvalid))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", "sets:\n  - name: s\n    path: rules.txt\n")

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	require.Len(t, cfg.Sources(), 1)
	assert.Equal(t, filepath.Join(dir, "rules.txt"), cfg.Sources()[0].Path)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, synerr.HasCode(err, synerr.ErrCodeConfigNotFound))
}

// =============================================================================
// Environment overrides
// =============================================================================

func TestLoad_EnvOverrides(t *testing.T) {
	// Given: a file and env vars that disagree
	dir := t.TempDir()
	writeConfig(t, dir, ".synmap.yaml", "logging:\n  level: warn\ncache:\n  size: 8\n")
	t.Setenv("SYNMAP_LOG_LEVEL", "error")
	t.Setenv("SYNMAP_ANALYZER", normalize.CodeAnalyzer)
	t.Setenv("SYNMAP_STORE_PATH", "/tmp/other.db")
	t.Setenv("SYNMAP_CACHE_SIZE", "16")

	// When: loading
	cfg, err := Load(dir)

	// Then: env wins
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, normalize.CodeAnalyzer, cfg.Defaults.Analyzer)
	assert.Equal(t, "/tmp/other.db", cfg.StorePath())
	assert.Equal(t, 16, cfg.Cache.Size)
}

func TestLoad_EnvIgnoresMalformedCacheSize(t *testing.T) {
	tests := []string{"abc", "-4", "0"}
	for _, v := range tests {
		t.Run(v, func(t *testing.T) {
			t.Setenv("SYNMAP_CACHE_SIZE", v)

			cfg, err := Load(t.TempDir())

			require.NoError(t, err)
			assert.Equal(t, 64, cfg.Cache.Size)
		})
	}
}

// =============================================================================
// Validation
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero cache", mutate: func(c *Config) { c.Cache.Size = 0 }},
		{name: "unknown default analyzer", mutate: func(c *Config) { c.Defaults.Analyzer = "nope" }},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }},
		{name: "negative max files", mutate: func(c *Config) { c.Logging.MaxFiles = -1 }},
		{name: "unnamed set", mutate: func(c *Config) { c.Sets = []SetConfig{{Synonyms: "a, b"}} }},
		{name: "duplicate set", mutate: func(c *Config) {
			c.Sets = []SetConfig{{Name: "x", Synonyms: "a, b"}, {Name: "x", Path: "p"}}
		}},
		{name: "no rules", mutate: func(c *Config) { c.Sets = []SetConfig{{Name: "x"}} }},
		{name: "both rules", mutate: func(c *Config) { c.Sets = []SetConfig{{Name: "x", Path: "p", Synonyms: "a, b"}} }},
		{name: "unknown set analyzer", mutate: func(c *Config) {
			c.Sets = []SetConfig{{Name: "x", Synonyms: "a, b", Analyzer: "nope"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			assert.True(t, synerr.HasCode(err, synerr.ErrCodeConfigInvalid), "got %v", err)
		})
	}
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	cfg := NewConfig()
	cfg.Logging.Level = "DEBUG"

	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidFileFailsValidation(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".synmap.yaml", "sets:\n  - name: x\n")

	_, err := Load(dir)

	assert.True(t, synerr.HasCode(err, synerr.ErrCodeConfigInvalid))
}

// =============================================================================
// WriteYAML
// =============================================================================

func TestWriteYAML_RoundTrip(t *testing.T) {
	// Given: a config with a set
	dir := t.TempDir()
	expand := true
	cfg := NewConfig()
	cfg.Sets = []SetConfig{{Name: "places", Path: "places.txt", Expand: &expand}}

	// When: writing and loading it back
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ".synmap.yaml")))
	loaded, err := Load(dir)

	// Then: values survive
	require.NoError(t, err)
	assert.Equal(t, cfg.Sets, loaded.Sets)
	assert.Equal(t, cfg.Defaults, loaded.Defaults)
}
