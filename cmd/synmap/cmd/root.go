// Package cmd provides the CLI commands for synmap.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/logging"
	"github.com/Aman-CERP/synmap/internal/profiling"
	"github.com/Aman-CERP/synmap/pkg/version"
)

// Global flags
var (
	debugMode   bool
	configPath  string
	profileOpts profiling.Options
)

// Per-run state, released in PersistentPostRunE
var (
	profiler       *profiling.Profiler
	loggingCleanup func()
)

// NewRootCmd creates the root command for the synmap CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synmap",
		Short: "Compile and apply synonym rule files",
		Long: `synmap compiles line-oriented synonym rules into term-to-term synonym
graphs and applies them as a token filter during text analysis.

Rule files hold one or more '|' separated groups per line. Each group is a
pair of ',' separated terms; a backslash escapes a literal '|' or ','.

  a, b|plz, plaza
  str, strasse|str, street

Sets are declared in .synmap.yaml and can be checked, analyzed against,
searched with, or compiled into the edge store.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("synmap version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.synmap/logs/")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .synmap.yaml in the working directory)")
	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCompileCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newSetsCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging installs the process logger and starts any
// requested profiles.
func startProfilingAndLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}
	if err := installLogger(logCfg); err != nil {
		return err
	}
	if debugMode {
		slog.Info("debug_logging_enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Version))
	}

	if profileOpts.Enabled() {
		p, err := profiling.Start(profileOpts)
		if err != nil {
			return err
		}
		profiler = p
	}
	return nil
}

// stopProfilingAndLogging flushes profiles and closes the log file.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	var err error
	if profiler != nil {
		err = profiler.Stop()
		profiler = nil
	}
	releaseLogger()
	return err
}

// installLogger replaces the default logger, closing any previous log file.
func installLogger(cfg logging.Config) error {
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	releaseLogger()
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func releaseLogger() {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// Execute runs the root command and prints failures in CLI form.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, synerr.FormatForCLI(err))
		// PersistentPostRunE does not run after a failed RunE
		releaseLogger()
		if profiler != nil {
			_ = profiler.Stop()
		}
	}
	return err
}
