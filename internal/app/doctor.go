package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/autotrans/internal/archive"
	"github.com/blackwell-systems/autotrans/internal/config"
	"github.com/blackwell-systems/autotrans/internal/tracker"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [BASELINE UNSTABLE EXPERIMENTAL [DEST]]",
	Short: "Check the mirror, tracker checkout and history database",
	Long: `Runs diagnostic checks before a real run.

Checks:
  • Config file is readable
  • Each distribution has a usable Release file and all its index files
  • The tracker checkout exists and how many transitions it tracks
  • The history database and its most recent run`,
	Args: cobra.MaximumNArgs(4),
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Running autotrans diagnostics...")
	fmt.Fprintln(out)

	criticalIssues := 0
	warningIssues := 0

	// Check 1: config file
	path := configPath
	if path == "" {
		path, _ = config.DefaultPath()
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(out, "– No config file at:", path)
	} else {
		fmt.Fprintln(out, "✓ Config loaded:", path)
	}

	// Check 2: distributions
	paths, dest, err := resolveSuites(args)
	if err != nil {
		fmt.Fprintln(out, "✗", err)
		criticalIssues++
	} else {
		for _, d := range []struct{ name, path string }{
			{"baseline", paths.Baseline},
			{"unstable", paths.Unstable},
			{"experimental", paths.Experimental},
		} {
			criticalIssues += checkDist(out, d.name, d.path)
		}
	}

	// Check 3: tracker checkout, warning only
	switch {
	case dest == "":
		fmt.Fprintln(out, "⚠ No tracker checkout configured, run will only print proposals")
		warningIssues++
	default:
		if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(out, "⚠ Tracker checkout does not exist yet:", dest)
			warningIssues++
		} else if tracked, err := tracker.FindExisting(dest); err != nil {
			fmt.Fprintln(out, "✗ Cannot read tracker checkout:", err)
			criticalIssues++
		} else {
			fmt.Fprintf(out, "✓ Tracker checkout %s tracks %s transitions\n", dest, humanize.Comma(int64(tracked.Len())))
		}
	}

	// Check 4: history, warning only
	st, err := openHistoryReadOnly()
	if err != nil {
		fmt.Fprintln(out, "⚠ No run history yet:", err)
		warningIssues++
	} else {
		defer st.Close()
		runs, err := st.ListRuns(1)
		switch {
		case err != nil:
			fmt.Fprintln(out, "⚠ Cannot read run history:", err)
			warningIssues++
		case len(runs) == 0:
			fmt.Fprintln(out, "⚠ No runs recorded yet")
			warningIssues++
		default:
			fmt.Fprintf(out, "✓ Last run %s proposed %d transitions\n", humanize.Time(runs[0].StartedAt), runs[0].ProposedCount)
		}
	}

	fmt.Fprintln(out)
	if criticalIssues > 0 {
		return fmt.Errorf("found %d critical issue(s)", criticalIssues)
	}
	if warningIssues > 0 {
		fmt.Fprintf(out, "Found %d warning(s); runs will still work.\n", warningIssues)
		return nil
	}
	fmt.Fprintln(out, "All checks passed.")
	return nil
}

// checkDist prints the state of one distribution and returns the number of
// critical issues found.
func checkDist(out io.Writer, name, path string) int {
	dist, err := archive.OpenMirrorDist(path)
	if err != nil {
		fmt.Fprintf(out, "✗ %s: %v\n", name, err)
		return 1
	}

	missing := 0
	indexes := append(dist.SourcesFiles(), dist.PackagesFiles()...)
	for _, base := range indexes {
		if _, err := archive.FindIndex(base); err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", name, err)
			missing++
		}
	}
	if missing > 0 {
		return missing
	}

	fmt.Fprintf(out, "✓ %s: %s (%d components, %d architectures, %d index files)\n",
		name, path, len(dist.Components), len(dist.Architectures), len(indexes))
	return 0
}
