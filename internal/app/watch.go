package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/autotrans/internal/output"
	"github.com/blackwell-systems/autotrans/internal/watcher"
)

var (
	watchWindow    time.Duration
	watchNoInitial bool
	watchFormat    string

	watchCmd = &cobra.Command{
		Use:   "watch BASELINE UNSTABLE EXPERIMENTAL DEST",
		Short: "Re-run detection whenever the mirror syncs",
		Long: `Watch the Release files of the three distributions and run detection
after every mirror sync, writing new trackers to DEST.

Changes are debounced: a run starts once no Release file has changed for
--window. Runs never overlap. Ctrl+C (SIGINT) or SIGTERM stops watching.`,
		Example: `  # Watch with the default 30s quiet window
  autotrans watch dists/testing dists/unstable dists/experimental ~/transitions/config

  # Only run after the next sync
  autotrans watch --no-initial dists/testing dists/unstable dists/experimental ~/transitions/config`,
		Args: cobra.MaximumNArgs(4),
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().DurationVar(&watchWindow, "window", watcher.DefaultWindow, "quiet period before a run starts")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "do not run once at startup")
	watchCmd.Flags().StringVar(&watchFormat, "format", "table", "output format for proposals: table, json or yaml")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(watchFormat)
	if err != nil {
		return err
	}

	paths, dest, err := resolveSuites(args)
	if err != nil {
		return err
	}
	if dest == "" {
		return fmt.Errorf("watch needs a DEST directory to write trackers to")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := loggerFromContext(ctx)
	opts := runOptions{paths: paths, dest: dest, format: format, history: true}
	out := cmd.OutOrStdout()

	if !watchNoInitial {
		if _, err := runTransitions(ctx, opts, out); err != nil {
			return err
		}
	}

	dirs := uniqueStrings(paths.Baseline, paths.Unstable, paths.Experimental)
	w, err := watcher.New(dirs, watchWindow, func(ctx context.Context, changed []string) error {
		logger.Debug("Starting run", "changed", changed)
		_, err := runTransitions(ctx, opts, out)
		return err
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("Watching for mirror updates", "dists", len(dirs), "window", watchWindow)
	if err := w.Run(ctx); err != nil {
		return err
	}
	logger.Info("Stopped watching")
	return nil
}

func uniqueStrings(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
