package analyzer

import (
	"sort"

	"github.com/blackwell-systems/autotrans/internal/archive"
	"github.com/blackwell-systems/autotrans/internal/scanner"
)

// DetectTransitions compares the binaries declared by every baseline source
// with those declared in candidate and returns one Candidate per source whose
// baseline set is not contained in the candidate set. Sources are visited in
// name order.
//
// A source missing from candidate is a removal. It is only reported when some
// binary outside the source's own set depends on one of its binaries.
//
// baseline must be indexed; only the sources of candidate are read.
func DetectTransitions(baseline *scanner.Suite, candidate *archive.Snapshot, stage Stage) []*Candidate {
	var out []*Candidate

	for _, source := range baseline.SourceNames() {
		oldBins := baseline.Sources[source].Binaries
		name := source

		var newBins map[string]struct{}
		if src, ok := candidate.Sources[source]; ok {
			newBins = src.Binaries
		} else {
			name = RemovalName(source)
			if !hasOutsideConsumer(baseline.Index, oldBins) {
				continue
			}
		}

		if isSubset(oldBins, newBins) {
			continue
		}

		removed := difference(oldBins, newBins)
		out = append(out, &Candidate{
			Name:    name,
			Source:  source,
			Added:   difference(newBins, oldBins),
			Removed: removed,
			Stage:   stage,
			Notes: map[string]string{
				NoteSmoothUpdate: SmoothUpdateNote(baseline.Index, removed),
			},
		})
	}

	return out
}

// DetectNearlyFinished finds binaries left in the baseline after their source
// moved on: binaries built from an older version than the baseline source,
// or whose source is gone. Architecture-independent binaries are skipped.
// Leftovers are grouped per source and returned in source name order.
func DetectNearlyFinished(baseline *scanner.Suite, stage Stage) []*Candidate {
	leftovers := make(map[string]map[string]struct{})

	for name, bin := range baseline.Binaries {
		if bin.Architecture == archive.ArchAll {
			continue
		}
		src, ok := baseline.Sources[bin.Source]
		if ok && archive.CompareVersions(src.Version, bin.SourceVersion) <= 0 {
			continue
		}
		set, ok := leftovers[bin.Source]
		if !ok {
			set = make(map[string]struct{})
			leftovers[bin.Source] = set
		}
		set[name] = struct{}{}
	}

	sources := make([]string, 0, len(leftovers))
	for source := range leftovers {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	out := make([]*Candidate, 0, len(sources))
	for _, source := range sources {
		var declared map[string]struct{}
		if src, ok := baseline.Sources[source]; ok {
			declared = src.Binaries
		}
		left := leftovers[source]

		out = append(out, &Candidate{
			Name:    source,
			Source:  source,
			Added:   difference(declared, left),
			Removed: sortedKeys(left),
			Stage:   stage,
			Notes:   map[string]string{},
		})
	}

	return out
}

// hasOutsideConsumer reports whether any binary in bins is depended on by a
// binary that is not itself in bins.
func hasOutsideConsumer(idx *scanner.ReverseIndex, bins map[string]struct{}) bool {
	for name := range bins {
		if idx.HasDependentsOutside(name, bins) {
			return true
		}
	}
	return false
}

func isSubset(a, b map[string]struct{}) bool {
	for name := range a {
		if _, ok := b[name]; !ok {
			return false
		}
	}
	return true
}

// difference returns the sorted names in a but not in b.
func difference(a, b map[string]struct{}) []string {
	out := []string{}
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
