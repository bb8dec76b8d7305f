package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/normalize"
	"github.com/Aman-CERP/synmap/internal/synset"
)

// File names looked up in the working directory, in order.
var fileNames = []string{".synmap.yaml", ".synmap.yml"}

// Config represents the complete synmap configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Defaults DefaultsConfig `yaml:"defaults" json:"defaults"`
	Sets     []SetConfig    `yaml:"sets" json:"sets"`
	Cache    CacheConfig    `yaml:"cache" json:"cache"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`

	// dir is where the config file was found; relative paths resolve
	// against it.
	dir string
}

// DefaultsConfig holds options inherited by every set.
type DefaultsConfig struct {
	Expand   bool   `yaml:"expand" json:"expand"`
	Dedup    bool   `yaml:"dedup" json:"dedup"`
	Analyzer string `yaml:"analyzer" json:"analyzer"`
}

// SetConfig declares one synonym set. Exactly one of Path and Synonyms must
// be set. Nil Expand/Dedup and an empty Analyzer inherit the defaults.
type SetConfig struct {
	Name     string `yaml:"name" json:"name"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Synonyms string `yaml:"synonyms,omitempty" json:"synonyms,omitempty"`
	Expand   *bool  `yaml:"expand,omitempty" json:"expand,omitempty"`
	Dedup    *bool  `yaml:"dedup,omitempty" json:"dedup,omitempty"`
	Analyzer string `yaml:"analyzer,omitempty" json:"analyzer,omitempty"`
}

// CacheConfig sizes the compiled-map cache.
type CacheConfig struct {
	Size int `yaml:"size" json:"size"`
}

// StoreConfig locates the edge store.
type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig returns a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Defaults: DefaultsConfig{
			Expand:   false,
			Dedup:    true,
			Analyzer: normalize.DefaultAnalyzer,
		},
		Cache: CacheConfig{Size: synset.DefaultCacheSize},
		Store: StoreConfig{Path: filepath.Join(".synmap", "synonyms.db")},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// Load loads configuration from dir. It applies, in order of increasing
// precedence:
//  1. Hardcoded defaults
//  2. .synmap.yaml (or .synmap.yml) in dir
//  3. Environment variables (SYNMAP_*)
//
// A missing config file is fine.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()
	cfg.dir = dir

	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadYAML(path); err != nil {
				return nil, err
			}
			break
		}
	}

	return cfg.finish()
}

// LoadFile loads configuration from an explicit file, which must exist.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, synerr.New(synerr.ErrCodeConfigNotFound,
			fmt.Sprintf("config file not found: %s", path), err).
			WithSuggestion("Check the --config path")
	}

	cfg := NewConfig()
	cfg.dir = filepath.Dir(path)
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg.finish()
}

func (c *Config) finish() (*Config, error) {
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadYAML decodes path over the current values, so keys absent from the
// file keep their defaults.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return synerr.IOError(fmt.Sprintf("failed to read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return synerr.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	return nil
}

// applyEnvOverrides applies SYNMAP_* environment variable overrides.
// Malformed numeric values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SYNMAP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SYNMAP_ANALYZER"); v != "" {
		c.Defaults.Analyzer = v
	}
	if v := os.Getenv("SYNMAP_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("SYNMAP_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			c.Cache.Size = n
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Cache.Size <= 0 {
		return invalid("cache.size must be positive, got %d", c.Cache.Size)
	}
	if !normalize.Exists(c.Defaults.Analyzer) {
		return invalid("defaults.analyzer %q is not a known analyzer", c.Defaults.Analyzer).
			WithSuggestion(analyzerHint())
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return invalid("logging.max_size_mb and logging.max_files must be non-negative")
	}

	seen := make(map[string]bool, len(c.Sets))
	for i, set := range c.Sets {
		if set.Name == "" {
			return invalid("sets[%d].name is required", i)
		}
		if seen[set.Name] {
			return invalid("duplicate synonym set %q", set.Name)
		}
		seen[set.Name] = true

		if (set.Path == "") == (set.Synonyms == "") {
			return invalid("set %q needs exactly one of path or synonyms", set.Name)
		}
		if set.Analyzer != "" && !normalize.Exists(set.Analyzer) {
			return invalid("set %q uses unknown analyzer %q", set.Name, set.Analyzer).
				WithSuggestion(analyzerHint())
		}
	}
	return nil
}

func invalid(format string, args ...any) *synerr.SynmapError {
	return synerr.ConfigError(fmt.Sprintf(format, args...), nil)
}

func analyzerHint() string {
	return "Known analyzers: " + strings.Join(normalize.BuiltinAnalyzers(), ", ")
}

// Sources resolves the configured sets, applying defaults and resolving
// relative paths against the config directory.
func (c *Config) Sources() []synset.Source {
	sources := make([]synset.Source, 0, len(c.Sets))
	for _, set := range c.Sets {
		src := synset.Source{
			Name:     set.Name,
			Path:     c.resolve(set.Path),
			Synonyms: set.Synonyms,
			Expand:   c.Defaults.Expand,
			Dedup:    c.Defaults.Dedup,
			Analyzer: c.Defaults.Analyzer,
		}
		if set.Expand != nil {
			src.Expand = *set.Expand
		}
		if set.Dedup != nil {
			src.Dedup = *set.Dedup
		}
		if set.Analyzer != "" {
			src.Analyzer = set.Analyzer
		}
		sources = append(sources, src)
	}
	return sources
}

// StorePath returns the edge store path resolved against the config
// directory.
func (c *Config) StorePath() string {
	return c.resolve(c.Store.Path)
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return synerr.InternalError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return synerr.IOError("failed to write config file", err)
	}
	return nil
}
