// Package output provides terminal output utilities for autotrans.
//
// This package includes:
//   - Table rendering for proposed transitions, run history and explanations
//   - JSON and YAML encodings of proposed transitions
//   - A spinner for suite loading
//
// Tables use plain characters and ANSI color codes for terminal output.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/autotrans/internal/analyzer"
	"github.com/blackwell-systems/autotrans/internal/store"
)

// ANSI color codes for stage and verdict display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled reports whether stdout is a terminal and NO_COLOR is unset.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in color when colors are enabled.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// stageColor returns the ANSI color code for a stage.
func stageColor(stage analyzer.Stage) string {
	switch stage {
	case analyzer.StageOngoing:
		return colorRed
	case analyzer.StagePlanned:
		return colorYellow
	case analyzer.StageFinished:
		return colorGreen
	default:
		return colorGray
	}
}

// RenderCandidateTable renders proposed transitions in the order given.
func RenderCandidateTable(candidates []*analyzer.Candidate) string {
	if len(candidates) == 0 {
		return "No new transitions found.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("%-9s %-24s %-26s %-26s %s\n",
		"Stage", "Transition", "Added", "Removed", "Smooth Update"))
	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")

	// Rows
	for _, c := range candidates {
		smooth := c.Notes[analyzer.NoteSmoothUpdate]
		if smooth == "" {
			smooth = "—"
		}
		// Pad before coloring so escape codes do not break alignment.
		stage := colorize(stageColor(c.Stage), fmt.Sprintf("%-9s", c.Stage))

		sb.WriteString(fmt.Sprintf("%s %-24s %-26s %-26s %s\n",
			stage,
			truncate(c.Name, 24),
			truncate(formatNames(c.Added), 26),
			truncate(formatNames(c.Removed), 26),
			smooth))
	}

	sb.WriteString(fmt.Sprintf("\n%s proposed\n", pluralize(len(candidates), "transition")))
	return sb.String()
}

// RenderRunTable renders recorded runs, newest first.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	sorted := make([]*store.Run, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.After(sorted[j].StartedAt)
	})

	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("%-36s %-16s %-9s %-9s %s\n",
		"Run", "Started", "Duration", "Proposed", "Destination"))
	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")

	// Rows
	for _, run := range sorted {
		dest := run.Dest
		if run.DryRun {
			dest = "(dry run)"
		}
		sb.WriteString(fmt.Sprintf("%-36s %-16s %-9s %-9s %s\n",
			run.ID,
			formatRelativeTime(run.StartedAt),
			formatDuration(run),
			humanize.Comma(int64(run.ProposedCount)),
			dest))
	}

	return sb.String()
}

// RenderProposalTable renders the proposals of one run.
func RenderProposalTable(run *store.Run, proposals []*store.Proposal) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:          %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Started:      %s (%s)\n", run.StartedAt.Local().Format(time.DateTime), formatRelativeTime(run.StartedAt)))
	sb.WriteString(fmt.Sprintf("Baseline:     %s\n", run.Baseline))
	sb.WriteString(fmt.Sprintf("Unstable:     %s\n", run.Unstable))
	sb.WriteString(fmt.Sprintf("Experimental: %s\n", run.Experimental))
	sb.WriteString("\n")

	if len(proposals) == 0 {
		sb.WriteString("No transitions proposed.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%-9s %-24s %-26s %-26s %s\n",
		"Stage", "Transition", "Added", "Removed", "Tracker"))
	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")

	for _, p := range proposals {
		written := p.WrittenPath
		if written == "" {
			written = "—"
		}
		stage := colorize(stageColor(analyzer.Stage(p.Stage)), fmt.Sprintf("%-9s", p.Stage))

		sb.WriteString(fmt.Sprintf("%s %-24s %-26s %-26s %s\n",
			stage,
			truncate(p.Name, 24),
			truncate(formatNames(p.Added), 26),
			truncate(formatNames(p.Removed), 26),
			written))
	}

	return sb.String()
}

// RenderExplanation renders how a single source is handled.
func RenderExplanation(exp *analyzer.Explanation) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Source: %s\n\n", exp.Source))

	sb.WriteString(fmt.Sprintf("%-14s %-20s %s\n", "Suite", "Version", "Binaries"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")
	for _, view := range exp.Suites {
		if !view.Present {
			sb.WriteString(fmt.Sprintf("%-14s %-20s %s\n", view.Suite, "—", "(absent)"))
			continue
		}
		sb.WriteString(fmt.Sprintf("%-14s %-20s %s\n", view.Suite, truncate(view.Version, 20), formatNames(view.Binaries)))
	}

	if len(exp.Dependents) > 0 {
		sb.WriteString("\nReverse dependencies from other sources (baseline):\n")
		bins := make([]string, 0, len(exp.Dependents))
		for bin := range exp.Dependents {
			bins = append(bins, bin)
		}
		sort.Strings(bins)
		for _, bin := range bins {
			deps := exp.Dependents[bin]
			if len(deps) == 0 {
				sb.WriteString(fmt.Sprintf("  %s: none\n", bin))
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s: %s (%s)\n", bin, truncate(strings.Join(deps, ", "), 60), pluralize(len(deps), "package")))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-9s %s\n", "Stage", "Verdict"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")
	for _, v := range exp.Verdicts {
		color := colorGray
		if v.Proposed {
			color = colorGreen
		}
		line := v.Reason
		if v.Candidate != nil {
			line += fmt.Sprintf(" [%s: +%s -%s]", v.Candidate.Name, formatNames(v.Candidate.Added), formatNames(v.Candidate.Removed))
		}
		sb.WriteString(fmt.Sprintf("%-9s %s\n", v.Stage, colorize(color, line)))
	}

	return sb.String()
}

func formatNames(names []string) string {
	if len(names) == 0 {
		return "—"
	}
	return strings.Join(names, ", ")
}

func formatDuration(run *store.Run) string {
	if run.FinishedAt.IsZero() {
		return "running"
	}
	d := run.FinishedAt.Sub(run.StartedAt)
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

// formatRelativeTime renders t as "3 hours ago", "just now" or "never".
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if time.Since(t) < time.Minute {
		return "just now"
	}
	return humanize.Time(t)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// truncate cuts s to at most maxLen bytes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
