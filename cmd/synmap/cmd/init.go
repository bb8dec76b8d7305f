package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/synmap/configs"
	"github.com/Aman-CERP/synmap/internal/config"
	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/output"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter .synmap.yaml and rule file",
		Long: `Write .synmap.yaml and synonyms/places.txt into dir (default: the
working directory). Existing files are kept unless --force is given.`,
		Example: `  synmap init
  synmap init ./search --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(dir, ".synmap.yaml"), configs.ProjectConfigTemplate},
		{filepath.Join(dir, "synonyms", "places.txt"), configs.PlacesRulesTemplate},
	}

	if !force {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return synerr.ValidationError(fmt.Sprintf("%s already exists", f.path), nil).
					WithSuggestion("Use --force to overwrite")
			}
		}
	}

	out := output.New(cmd.OutOrStdout())
	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return synerr.IOError("failed to create directory "+filepath.Dir(f.path), err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return synerr.IOError("failed to write "+f.path, err)
		}
		out.Successf("Wrote %s", f.path)
	}

	if _, err := config.Load(dir); err != nil {
		return err
	}
	out.Status("", "Run 'synmap check' to compile the sets")
	return nil
}
