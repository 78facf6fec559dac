package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/autotrans/internal/analyzer"
	"github.com/blackwell-systems/autotrans/internal/output"
	"github.com/blackwell-systems/autotrans/internal/scanner"
)

var (
	explainDest string

	explainCmd = &cobra.Command{
		Use:   "explain SOURCE [BASELINE UNSTABLE EXPERIMENTAL]",
		Short: "Show why a source package is or is not proposed",
		Long: `Load all three suites and walk a single source package through detection,
tracked filtering, impact classification and deduplication, reporting the
decision taken for every stage.

Suite paths default to the config file. Trackers under --dest (or the
configured dest) count as already tracked.`,
		Example: `  # Explain libfoo using the configured mirror
  autotrans explain libfoo

  # Explicit suites
  autotrans explain libfoo dists/testing dists/unstable dists/experimental`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("missing source package name")
			}
			if len(args) != 1 && len(args) != 4 {
				return fmt.Errorf("expected SOURCE or SOURCE BASELINE UNSTABLE EXPERIMENTAL, got %d arguments", len(args))
			}
			return nil
		},
		RunE: runExplain,
	}
)

func init() {
	explainCmd.Flags().StringVar(&explainDest, "dest", "", "tracker checkout whose trackers count as tracked (default: config dest)")

	RootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	source := args[0]

	paths, dest, err := resolveSuites(args[1:])
	if err != nil {
		return err
	}
	if explainDest != "" {
		dest = explainDest
	}

	loader, err := scanner.NewLoader(paths)
	if err != nil {
		return err
	}

	spinner := output.NewSpinner(cmd.ErrOrStderr(), "Loading suites")
	spinner.Start()
	p := newProgress(logger)

	suites, err := loader.LoadSources(ctx)
	if err == nil {
		err = loader.LoadBaselineBinaries(ctx, suites)
	}
	if err == nil {
		err = loader.LoadCandidateBinaries(ctx, suites)
	}
	spinner.Stop()
	if err != nil {
		return err
	}
	p.done("Loaded suites")

	tracked, err := loadTracked(dest)
	if err != nil {
		return err
	}

	exp, err := analyzer.Explain(suites, tracked, source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderExplanation(exp))
	printLastProposal(cmd, source)
	return nil
}

// printLastProposal mentions the most recent recorded proposal of source or
// its removal, if the history has one.
func printLastProposal(cmd *cobra.Command, source string) {
	logger := loggerFromContext(cmd.Context())

	st, err := openHistoryReadOnly()
	if err != nil {
		if !isMissingHistory(err) {
			logger.Debug("History unavailable", "err", err)
		}
		return
	}
	defer st.Close()

	for _, name := range []string{source, analyzer.RemovalName(source)} {
		prop, err := st.LastProposal(name)
		if isMissingHistory(err) {
			continue
		}
		if err != nil {
			logger.Debug("History lookup failed", "name", name, "err", err)
			return
		}

		when := "an earlier run"
		if run, err := st.GetRun(prop.RunID); err == nil {
			when = "run " + run.ID + " (" + run.StartedAt.Local().Format("2006-01-02 15:04") + ")"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nLast proposed as %s under %s in %s\n", prop.Name, prop.Stage, when)
		return
	}
}
