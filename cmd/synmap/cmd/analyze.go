package cmd

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/synmap/internal/index"
)

type analyzeOptions struct {
	setFlags
	json bool
}

// analyzedToken is one token of the analyzed stream.
type analyzedToken struct {
	Term     string `json:"term"`
	Position int    `json:"position"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Show the token stream of text after synonym expansion",
		Long: `Run text through the synonym text analyzer (whitespace tokenizer,
lowercase, synonym filter) and print every token with its position and
byte offsets. Tokens sharing a position are synonyms of each other.

Examples:
  synmap analyze --set places "plz near the str"
  synmap analyze --synonyms synonyms/places.txt --expand "new york pizza"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output tokens as JSON")

	return cmd
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, text string, opts analyzeOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rs, err := opts.resolve(cmd, cfg)
	if err != nil {
		return err
	}
	reg, release, err := registryFor(cfg, rs)
	if err != nil {
		return err
	}
	defer release()

	m, err := reg.Get(ctx, rs.src.Name)
	if err != nil {
		return err
	}
	analyzer, err := index.NewTextAnalyzer(m)
	if err != nil {
		return err
	}

	stream := analyzer.Analyze([]byte(text))
	tokens := make([]analyzedToken, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, analyzedToken{
			Term:     string(tok.Term),
			Position: tok.Position,
			Start:    tok.Start,
			End:      tok.End,
		})
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tokens)
	}
	for _, tok := range tokens {
		printf(cmd, "%3d  %-20s [%d:%d]\n", tok.Position, tok.Term, tok.Start, tok.End)
	}
	return nil
}
