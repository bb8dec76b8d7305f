package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/synmap/internal/output"
	"github.com/Aman-CERP/synmap/internal/profiling"
	"github.com/Aman-CERP/synmap/internal/synset"
)

type checkOptions struct {
	watch    bool
	debounce time.Duration
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile every configured synonym set",
		Long: `Compile every set declared in .synmap.yaml and report its size.
The first set that fails to compile fails the command.

With --watch, file-backed sets are recompiled whenever their rule files
change until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Keep recompiling file-backed sets when they change")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "Debounce window for --watch (default 200ms)")

	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, opts checkOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := output.New(cmd.OutOrStdout())

	sources := cfg.Sources()
	if len(sources) == 0 {
		out.Warning("No synonym sets configured")
		out.Status("", "Declare sets under 'sets:' in .synmap.yaml")
		return nil
	}

	reg, err := synset.New(sources,
		synset.WithCacheSize(cfg.Cache.Size),
		synset.WithDebounce(opts.debounce))
	if err != nil {
		return err
	}

	start := time.Now()
	maps, err := reg.LoadAll(ctx)
	if err != nil {
		out.Error("Synonym sets failed to compile")
		return err
	}
	for _, name := range reg.Names() {
		m := maps[name]
		out.Successf("%s: %d inputs, %d edges", name, m.Len(), m.EdgeCount())
	}
	out.Fields(
		"sets", strconv.Itoa(len(maps)),
		"time", time.Since(start).Round(time.Millisecond).String(),
		"heap", profiling.FormatBytes(profiling.HeapInUse()),
	)

	if !opts.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out.Newline()
	out.Status("👀", "Watching for changes (Ctrl+C to stop)")
	return reg.Watch(ctx, func(r synset.Reload) {
		if r.Err != nil {
			out.Errorf("%s: %v", r.Name, r.Err)
			return
		}
		out.Successf("%s: recompiled, %d inputs, %d edges", r.Name, r.Map.Len(), r.Map.EdgeCount())
	})
}
