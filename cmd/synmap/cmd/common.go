package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/synmap/internal/config"
	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/logging"
	"github.com/Aman-CERP/synmap/internal/store"
	"github.com/Aman-CERP/synmap/internal/synset"
)

// loadConfig loads --config, or .synmap.yaml from the working directory.
// A configured log file takes over from stderr logging unless --debug is
// set.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	if cfg.Logging.File != "" && !debugMode {
		err := installLogger(logging.Config{
			Level:     cfg.Logging.Level,
			FilePath:  cfg.Logging.File,
			MaxSizeMB: cfg.Logging.MaxSizeMB,
			MaxFiles:  cfg.Logging.MaxFiles,
		})
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openExistingStore opens the edge store at path, or returns nil when no
// store has been written there yet.
func openExistingStore(path string) (*store.EdgeStore, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return store.Open(path)
}

// setFlags are the flags shared by commands that resolve one synonym set.
type setFlags struct {
	set      string
	synonyms string
	expand   bool
	dedup    bool
	analyzer string
}

func (f *setFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.set, "set", "s", "", "Configured or stored synonym set name")
	cmd.Flags().StringVar(&f.synonyms, "synonyms", "", "Synonym rule file to use instead of a named set")
	cmd.Flags().BoolVar(&f.expand, "expand", false, "Expand groups instead of collapsing (with --synonyms)")
	cmd.Flags().BoolVar(&f.dedup, "dedup", true, "Drop duplicate edges (with --synonyms)")
	cmd.Flags().StringVar(&f.analyzer, "analyzer", "", "Analyzer normalizing rule terms (with --synonyms)")
}

// resolvedSet is the synonym set a command runs against.
type resolvedSet struct {
	src synset.Source
	// adhoc sets come from --synonyms and are not configured
	adhoc bool
	// stored sets are only known to the edge store
	stored bool
}

// resolve turns the flags into a configured, ad hoc or stored set.
func (f *setFlags) resolve(cmd *cobra.Command, cfg *config.Config) (resolvedSet, error) {
	switch {
	case f.set != "" && f.synonyms != "":
		return resolvedSet{}, synerr.ValidationError("--set and --synonyms are mutually exclusive", nil)
	case f.synonyms != "":
		src := synset.Source{
			Name:     strings.TrimSuffix(filepath.Base(f.synonyms), filepath.Ext(f.synonyms)),
			Path:     f.synonyms,
			Expand:   cfg.Defaults.Expand,
			Dedup:    cfg.Defaults.Dedup,
			Analyzer: cfg.Defaults.Analyzer,
		}
		if cmd.Flags().Changed("expand") {
			src.Expand = f.expand
		}
		if cmd.Flags().Changed("dedup") {
			src.Dedup = f.dedup
		}
		if f.analyzer != "" {
			src.Analyzer = f.analyzer
		}
		return resolvedSet{src: src, adhoc: true}, src.Validate()
	case f.set != "":
		for _, src := range cfg.Sources() {
			if src.Name == f.set {
				return resolvedSet{src: src}, nil
			}
		}
		return resolvedSet{src: synset.Source{Name: f.set}, stored: true}, nil
	default:
		return resolvedSet{}, synerr.ValidationError("a synonym set is required", nil).
			WithSuggestion("Pass --set <name> or --synonyms <file>")
	}
}

// registryFor builds a registry that can compile rs. Stored sets are backed
// by the edge store when one exists. The returned function releases it.
func registryFor(cfg *config.Config, rs resolvedSet) (*synset.Registry, func(), error) {
	sources := cfg.Sources()
	if rs.adhoc {
		sources = []synset.Source{rs.src}
	}

	opts := []synset.Option{synset.WithCacheSize(cfg.Cache.Size)}
	release := func() {}
	if rs.stored {
		s, err := openExistingStore(cfg.StorePath())
		if err != nil {
			return nil, nil, err
		}
		if s != nil {
			opts = append(opts, synset.WithStore(s))
			release = func() { closeStore(s) }
		}
	}

	reg, err := synset.New(sources, opts...)
	if err != nil {
		release()
		return nil, nil, err
	}
	return reg, release, nil
}

func closeStore(s *store.EdgeStore) {
	if err := s.Close(); err != nil {
		slog.Warn("store_close_failed", slog.String("error", err.Error()))
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
