package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/logging"
	"github.com/Aman-CERP/synmap/internal/output"
)

type logsOptions struct {
	lines   int
	level   string
	grep    string
	file    string
	noColor bool
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent synmap log entries",
		Long: `Show the last entries of the synmap log file, written by runs with
--debug (~/.synmap/logs/synmap.log) or by logging.file in .synmap.yaml.

Examples:
  synmap logs                    # Last 50 lines
  synmap logs -n 200 --level warn
  synmap logs --grep synonym_set_compiled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.grep, "grep", "", "Only show lines matching this regex")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file path (default ~/.synmap/logs/synmap.log)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	if opts.lines <= 0 {
		return synerr.ValidationError(fmt.Sprintf("--lines must be positive, got %d", opts.lines), nil)
	}

	var pattern *regexp.Regexp
	if opts.grep != "" {
		re, err := regexp.Compile(opts.grep)
		if err != nil {
			return synerr.ValidationError("invalid --grep pattern", err)
		}
		pattern = re
	}

	path, err := logging.FindLogFile(opts.file)
	if err != nil {
		return err
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || !output.UseColor(cmd.OutOrStdout()),
	}, cmd.OutOrStdout())

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return synerr.IOError("failed to read log file", err)
	}
	viewer.Print(entries)
	return nil
}
