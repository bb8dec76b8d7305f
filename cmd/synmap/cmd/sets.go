package cmd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/synmap/internal/output"
	"github.com/Aman-CERP/synmap/internal/store"
)

func newSetsCmd() *cobra.Command {
	var (
		dbPath     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List synonym sets saved in the edge store",
		Long: `List the synonym sets saved with 'synmap compile --name', with their
options, edge counts and when they were compiled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSets(cmd.Context(), cmd, dbPath, jsonOutput)
		},
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Edge store path (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output sets as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a stored synonym set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetsRemove(cmd.Context(), cmd, dbPath, args[0])
		},
	})

	return cmd
}

// storePath returns dbPath, or the configured store path.
func storePath(dbPath string) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.StorePath(), nil
}

func runSets(ctx context.Context, cmd *cobra.Command, dbPath string, jsonOutput bool) error {
	path, err := storePath(dbPath)
	if err != nil {
		return err
	}
	s, err := openExistingStore(path)
	if err != nil {
		return err
	}

	var sets []store.SetSummary
	if s != nil {
		defer closeStore(s)
		if sets, err = s.List(ctx); err != nil {
			return err
		}
	}

	if jsonOutput {
		if sets == nil {
			sets = []store.SetSummary{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sets)
	}

	out := output.New(cmd.OutOrStdout())
	if len(sets) == 0 {
		out.Status("📭", "No stored synonym sets")
		out.Status("", "Save one with 'synmap compile <file> --name <set>'")
		return nil
	}
	for _, set := range sets {
		printf(cmd, "%-20s %6d edges  expand=%-5t dedup=%-5t %s\n",
			set.Name, set.EdgeCount, set.Options.Expand, set.Options.Dedup,
			set.CompiledAt.Local().Format(time.DateTime))
	}
	return nil
}

func runSetsRemove(ctx context.Context, cmd *cobra.Command, dbPath, name string) error {
	path, err := storePath(dbPath)
	if err != nil {
		return err
	}
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer closeStore(s)

	if err := s.Delete(ctx, name); err != nil {
		return err
	}
	output.New(cmd.OutOrStdout()).Successf("Deleted %q", name)
	return nil
}
