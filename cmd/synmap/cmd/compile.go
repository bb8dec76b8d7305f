package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2/registry"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/synmap/internal/config"
	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/normalize"
	"github.com/Aman-CERP/synmap/internal/output"
	"github.com/Aman-CERP/synmap/internal/store"
	"github.com/Aman-CERP/synmap/internal/synmap"
	"github.com/Aman-CERP/synmap/internal/synonym"
	"github.com/Aman-CERP/synmap/internal/synset"
)

type compileOptions struct {
	expand   bool
	dedup    bool
	analyzer string
	json     bool
	name     string
	db       string
}

// compiledSet is the JSON form of a compiled rule file.
type compiledSet struct {
	Name      string         `json:"name,omitempty"`
	Expand    bool           `json:"expand"`
	Dedup     bool           `json:"dedup"`
	Analyzer  string         `json:"analyzer"`
	Inputs    int            `json:"inputs"`
	EdgeCount int            `json:"edge_count"`
	Edges     []compiledEdge `json:"edges"`
}

type compiledEdge struct {
	Input           string `json:"input"`
	Output          string `json:"output"`
	IncludeOriginal bool   `json:"include_original"`
}

func newCompileCmd() *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "compile [file|-]",
		Short: "Compile a synonym rule file into edges",
		Long: `Parse a synonym rule file and print the resulting edges.

Without a file, or with '-', rules are read from stdin. Edges print as
"input -> output"; "+>" marks edges that keep the original token.

With --name the compiled edges are saved to the edge store under that
name, where 'analyze --set' and 'sets' can find them.

Examples:
  synmap compile synonyms/places.txt
  synmap compile --expand synonyms/places.txt
  echo "a, b|plz, plaza" | synmap compile --json
  synmap compile synonyms/places.txt --name places`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runCompile(cmd.Context(), cmd, path, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.expand, "expand", false, "Map every term of a group onto the others and keep originals")
	cmd.Flags().BoolVar(&opts.dedup, "dedup", true, "Drop duplicate edges")
	cmd.Flags().StringVar(&opts.analyzer, "analyzer", "", "Analyzer normalizing rule terms (default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output edges as JSON")
	cmd.Flags().StringVar(&opts.name, "name", "", "Save the compiled set to the edge store under this name")
	cmd.Flags().StringVar(&opts.db, "db", "", "Edge store path (default from config)")

	return cmd
}

func runCompile(ctx context.Context, cmd *cobra.Command, path string, opts compileOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rules, err := readRules(cmd, path)
	if err != nil {
		return err
	}

	parseOpts := synonym.Options{Expand: cfg.Defaults.Expand, Dedup: cfg.Defaults.Dedup}
	if cmd.Flags().Changed("expand") {
		parseOpts.Expand = opts.expand
	}
	if cmd.Flags().Changed("dedup") {
		parseOpts.Dedup = opts.dedup
	}
	analyzer := cfg.Defaults.Analyzer
	if opts.analyzer != "" {
		analyzer = opts.analyzer
	}

	n, err := normalize.Named(registry.NewCache(), analyzer)
	if err != nil {
		return err
	}
	m, err := synmap.Compile(strings.NewReader(rules), parseOpts, n)
	if err != nil {
		if e, ok := synerr.As(err); ok && path != "-" {
			e.WithDetail("path", path)
		}
		return err
	}
	slog.Debug("rules_compiled",
		slog.String("path", path),
		slog.Int("inputs", m.Len()),
		slog.Int("edges", m.EdgeCount()))

	if opts.name != "" {
		if err := saveCompiled(ctx, cfg, opts, parseOpts, m); err != nil {
			return err
		}
		output.New(cmd.ErrOrStderr()).Successf("Saved %d edges as %q", m.EdgeCount(), opts.name)
	}

	if opts.json {
		return writeCompiledJSON(cmd.OutOrStdout(), opts.name, analyzer, parseOpts, m)
	}
	for _, edge := range m.Edges() {
		printf(cmd, "%s\n", edge)
	}
	return nil
}

// readRules reads rule text from path, or stdin for "-".
func readRules(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", synerr.IOError("failed to read rules from stdin", err)
		}
		return string(data), nil
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return synset.Source{Name: name, Path: path}.Rules()
}

func saveCompiled(ctx context.Context, cfg *config.Config, opts compileOptions, parseOpts synonym.Options, m *synmap.Map) error {
	dbPath := opts.db
	if dbPath == "" {
		dbPath = cfg.StorePath()
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer closeStore(s)
	return s.Save(ctx, opts.name, parseOpts, m.Edges())
}

func writeCompiledJSON(w io.Writer, name, analyzer string, opts synonym.Options, m *synmap.Map) error {
	edges := m.Edges()
	out := compiledSet{
		Name:      name,
		Expand:    opts.Expand,
		Dedup:     opts.Dedup,
		Analyzer:  analyzer,
		Inputs:    m.Len(),
		EdgeCount: len(edges),
		Edges:     make([]compiledEdge, 0, len(edges)),
	}
	for _, e := range edges {
		out.Edges = append(out.Edges, compiledEdge{
			Input:           e.Input.String(),
			Output:          e.Output.String(),
			IncludeOriginal: e.IncludeOriginal,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode edges: %w", err)
	}
	return nil
}
