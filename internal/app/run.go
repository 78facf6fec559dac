package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/autotrans/internal/analyzer"
	"github.com/blackwell-systems/autotrans/internal/output"
	"github.com/blackwell-systems/autotrans/internal/scanner"
	"github.com/blackwell-systems/autotrans/internal/store"
	"github.com/blackwell-systems/autotrans/internal/tracker"
)

var (
	runDryRun    bool
	runFormat    string
	runNoHistory bool

	runCmd = &cobra.Command{
		Use:   "run BASELINE UNSTABLE EXPERIMENTAL [DEST]",
		Short: "Detect transitions and write tracker files",
		Long: `Detect library transitions between the baseline suite and unstable/experimental.

Every argument is a distribution directory of a local mirror containing a
Release file (e.g. /srv/mirror/debian/dists/testing). Missing arguments are
taken from the config file.

With DEST, a tracker is written to DEST/<stage>/auto-<name>.ben for every new
transition, and transitions already tracked under DEST are skipped. Without
DEST, or with --dry-run, proposals are printed instead.

When nothing new is found the command exits 0 without writing anything.`,
		Example: `  # Print proposals as a table
  autotrans run dists/testing dists/unstable dists/experimental

  # Machine-readable preview, honoring trackers already in the checkout
  autotrans run --dry-run --format json dists/testing dists/unstable dists/experimental ~/transitions/config

  # Write trackers
  autotrans run dists/testing dists/unstable dists/experimental ~/transitions/config`,
		Args: cobra.MaximumNArgs(4),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print proposals instead of writing trackers")
	runCmd.Flags().StringVar(&runFormat, "format", "table", "output format: table, json or yaml")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run in the history database")

	RootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(runFormat)
	if err != nil {
		return err
	}

	paths, dest, err := resolveSuites(args)
	if err != nil {
		return err
	}

	_, err = runTransitions(cmd.Context(), runOptions{
		paths:   paths,
		dest:    dest,
		dryRun:  runDryRun,
		format:  format,
		history: !runNoHistory,
	}, cmd.OutOrStdout())
	return err
}

type runOptions struct {
	paths   scanner.Paths
	dest    string
	dryRun  bool
	format  output.Format
	history bool
}

// runReport is what one pass of run produced.
type runReport struct {
	RunID      string
	Candidates []*analyzer.Candidate
	Written    []string
}

// runTransitions executes one detection pass. Malformed suites abort it
// before detection; finding nothing new is not an error and writes nothing.
func runTransitions(ctx context.Context, opts runOptions, out io.Writer) (*runReport, error) {
	logger := loggerFromContext(ctx)
	started := time.Now()

	loader, err := scanner.NewLoader(opts.paths)
	if err != nil {
		return nil, err
	}

	tracked, err := loadTracked(opts.dest)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded tracked transitions", "dest", opts.dest, "tracked", tracked.Len())

	result, err := analyzer.NewPipeline(loader, tracked, logger).Run(ctx)
	if err != nil {
		return nil, err
	}

	report := &runReport{Candidates: result.Candidates}
	if len(report.Candidates) == 0 {
		logger.Info("No new transitions")
		if opts.format != output.FormatTable {
			return report, output.WriteCandidates(out, opts.format, nil)
		}
		return report, nil
	}

	write := opts.dest != "" && !opts.dryRun
	if write {
		p := newProgress(logger)
		w := tracker.NewWriter(opts.dest)
		for _, c := range report.Candidates {
			path, err := w.Write(c)
			if err != nil {
				return report, err
			}
			logger.Debug("Wrote tracker", "path", path)
			report.Written = append(report.Written, path)
		}
		p.done(fmt.Sprintf("Wrote %s trackers to %s", humanize.Comma(int64(len(report.Written))), opts.dest))
	}

	if err := output.WriteCandidates(out, opts.format, report.Candidates); err != nil {
		return report, err
	}

	if opts.history {
		id, err := recordRun(started, opts, report)
		if err != nil {
			// History is best effort once trackers are written.
			logger.Warn("Failed to record run history", "err", err)
		} else {
			report.RunID = id
			logger.Debug("Recorded run", "id", id)
		}
	}

	return report, nil
}

func recordRun(started time.Time, opts runOptions, report *runReport) (string, error) {
	st, err := openHistory()
	if err != nil {
		return "", err
	}
	defer st.Close()

	run := &store.Run{
		StartedAt:    started,
		Baseline:     opts.paths.Baseline,
		Unstable:     opts.paths.Unstable,
		Experimental: opts.paths.Experimental,
		Dest:         opts.dest,
		DryRun:       opts.dryRun || opts.dest == "",
	}
	if err := st.InsertRun(run); err != nil {
		return "", err
	}

	for i, c := range report.Candidates {
		p := &store.Proposal{
			RunID:   run.ID,
			Name:    c.Name,
			Stage:   string(c.Stage),
			Source:  c.Source,
			Added:   c.Added,
			Removed: c.Removed,
			Notes:   c.Notes,
		}
		if i < len(report.Written) {
			p.WrittenPath = report.Written[i]
		}
		if err := st.InsertProposal(p); err != nil {
			return "", err
		}
	}

	if err := st.FinishRun(run.ID, len(report.Candidates)); err != nil {
		return "", err
	}
	return run.ID, nil
}
