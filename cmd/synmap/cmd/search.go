package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/index"
	"github.com/Aman-CERP/synmap/internal/output"
)

type searchOptions struct {
	setFlags
	docs      string
	indexPath string
	limit     int
	json      bool
}

// searchHit is the JSON form of a search result.
type searchHit struct {
	Line    int      `json:"line"`
	Score   float64  `json:"score"`
	Content string   `json:"content"`
	Matched []string `json:"matched"`
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search lines of a file with synonym expansion",
		Long: `Index every non-empty line of --docs with the synonym text analyzer
and run query against it. Documents and query both pass through the
synonym filter, so a query for one term finds lines with its synonyms.

The index lives in memory unless --index names a directory; an on-disk
index built with different rules is rebuilt.

Examples:
  synmap search --set places --docs addresses.txt "plz"
  synmap search --synonyms synonyms/places.txt --docs addresses.txt "strasse" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.docs, "docs", "d", "", "File whose lines are the documents (required)")
	cmd.Flags().StringVar(&opts.indexPath, "index", "", "Keep the index on disk at this path")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output results as JSON")
	_ = cmd.MarkFlagRequired("docs")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rs, err := opts.resolve(cmd, cfg)
	if err != nil {
		return err
	}
	if rs.stored {
		return synerr.New(synerr.ErrCodeUnknownSet,
			fmt.Sprintf("synonym set %q is not configured", rs.src.Name), nil).
			WithSuggestion("Search needs rule text; use a set from .synmap.yaml or --synonyms")
	}

	lines, err := readLines(opts.docs)
	if err != nil {
		return err
	}

	idx, err := index.New(opts.indexPath, rs.src)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	docs := make([]index.Document, 0, len(lines))
	for n, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		docs = append(docs, index.Document{ID: strconv.Itoa(n + 1), Content: line})
	}
	if err := idx.Index(ctx, docs); err != nil {
		return err
	}

	slog.Info("search_started",
		slog.String("set", rs.src.Name),
		slog.String("query", query),
		slog.Int("docs", len(docs)))

	results, err := idx.Search(ctx, query, opts.limit)
	if err != nil {
		return err
	}

	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		line, _ := strconv.Atoi(r.DocID)
		hits = append(hits, searchHit{
			Line:    line,
			Score:   r.Score,
			Content: lines[line-1],
			Matched: r.MatchedTerms,
		})
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	out := output.New(cmd.OutOrStdout())
	if len(hits) == 0 {
		out.Statusf("🔍", "No results for %q", query)
		return nil
	}
	out.Statusf("🔍", "%d results for %q", len(hits), query)
	for _, h := range hits {
		printf(cmd, "%4d  %6.3f  %s  [%s]\n", h.Line, h.Score, h.Content, strings.Join(h.Matched, ", "))
	}
	return nil
}

// readLines reads path as lines, keeping empty ones so line numbers hold.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, synerr.New(synerr.ErrCodeFileNotFound, "documents file not found: "+path, err)
		}
		return nil, synerr.IOError("failed to open documents file: "+path, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, synerr.IOError("failed to read documents file: "+path, err)
	}
	return lines, nil
}
