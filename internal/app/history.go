package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/autotrans/internal/output"
)

var (
	historyRunID string
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List previous runs and their proposals",
		Long: `Show the runs recorded in the history database, newest first, or the
transitions proposed by a single run with --run.`,
		Example: `  # Last 20 runs
  autotrans history

  # Proposals of one run
  autotrans history --run 6f1c2d7e-...`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "show the proposals of this run")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list (0 for all)")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openHistoryReadOnly()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if historyRunID != "" {
		run, err := st.GetRun(historyRunID)
		if err != nil {
			return err
		}
		proposals, err := st.ListProposals(run.ID)
		if err != nil {
			return err
		}
		fmt.Fprint(out, output.RenderProposalTable(run, proposals))
		return nil
	}

	runs, err := st.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprint(out, output.RenderRunTable(runs))
	return nil
}
