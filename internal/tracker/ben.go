package tracker

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/blackwell-systems/autotrans/internal/analyzer"
)

const benNotes = "This tracker was setup by a very simple automated tool.  The tool may not be very smart..."

// RenderBen renders c as a tracker file. Packages depending on an added
// binary are good, those depending on a removed one are bad. Notes are
// appended as sorted bullets.
func RenderBen(c *analyzer.Candidate) string {
	good := alternation(c.Added)
	bad := alternation(c.Removed)

	affected := bad
	isGood := "false"
	if good != "" {
		affected = good + "|" + bad
		isGood = fmt.Sprintf(".depends ~ /%s/", good)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "title = \"%s (auto)\";\n", c.Name)
	fmt.Fprintf(&b, "is_affected = .depends ~ /%s/;\n", affected)
	fmt.Fprintf(&b, "is_good = %s;\n", isGood)
	fmt.Fprintf(&b, "is_bad = .depends ~ /%s/;\n", bad)
	fmt.Fprintf(&b, "notes = \"%s%s\";\n", benNotes, extraNotes(c.Notes))
	return b.String()
}

func alternation(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = regexp.QuoteMeta(name)
	}
	return strings.Join(quoted, "|")
}

func extraNotes(notes map[string]string) string {
	if len(notes) == 0 {
		return ""
	}

	keys := make([]string, 0, len(notes))
	for key := range notes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, key := range keys {
		lines[i] = fmt.Sprintf(" * %s: %s", key, notes[key])
	}
	return "\n\nExtra information (collected entirely from testing!):\n" + strings.Join(lines, "\n")
}
