package analyzer

import (
	"fmt"

	"github.com/blackwell-systems/autotrans/internal/scanner"
)

// Discard reasons reported by Explain.
const (
	reasonNothingAdded = "no new binaries to move to"
	reasonNoImpact     = "no binary outside the source depends on the old or new binaries"
)

// Classify reports whether c should be proposed, judging impact against the
// binaries of lookup. Binaries missing from lookup have no dependents.
//
// A candidate is dropped when it adds nothing, unless it is a removal or a
// finished transition, and when it both adds and removes binaries without
// any of them being depended on from another source.
func Classify(c *Candidate, lookup *scanner.ReverseIndex) bool {
	return discardReason(c, lookup) == ""
}

func discardReason(c *Candidate, lookup *scanner.ReverseIndex) string {
	if len(c.Added) == 0 && c.Stage != StageFinished && !c.IsRemoval() {
		return reasonNothingAdded
	}

	if len(c.Added) > 0 && len(c.Removed) > 0 {
		if !anyExternal(lookup, c.Source, c.Removed) && !anyExternal(lookup, c.Source, c.Added) {
			return reasonNoImpact
		}
	}

	return ""
}

func anyExternal(lookup *scanner.ReverseIndex, source string, names []string) bool {
	if lookup == nil {
		return false
	}
	for _, name := range names {
		if lookup.HasExternalDependents(source, name) {
			return true
		}
	}
	return false
}

// SmoothUpdateNote tells whether the removed binaries can be kept around
// while their dependents are rebuilt. Only library sections qualify; a
// binary in any other section blocks a smooth update once something depends
// on it. Binaries unknown to idx (udebs, for instance) are ignored.
func SmoothUpdateNote(idx *scanner.ReverseIndex, removed []string) string {
	note := SmoothMaybe
	for _, name := range removed {
		pkg, ok := idx.Binary(name)
		if !ok {
			continue
		}
		if isLibrarySection(pkg.Section) {
			continue
		}
		if idx.HasDependents(name) {
			note = fmt.Sprintf("no - %s is not in libs or oldlibs", name)
		} else if note == SmoothMaybe {
			note = SmoothMaybeIgnoring
		}
	}
	return note
}

// isLibrarySection matches exactly libs and oldlibs. Component-prefixed
// sections such as contrib/libs do not qualify.
func isLibrarySection(section string) bool {
	return section == "libs" || section == "oldlibs"
}
