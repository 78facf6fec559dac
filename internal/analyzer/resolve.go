package analyzer

import (
	"sort"

	"github.com/blackwell-systems/autotrans/internal/scanner"
)

// Tracked holds the transition names already tracked under each stage.
type Tracked map[Stage]map[string]struct{}

// NewTracked returns an empty set for every stage.
func NewTracked() Tracked {
	t := make(Tracked, len(Stages))
	for _, stage := range Stages {
		t[stage] = make(map[string]struct{})
	}
	return t
}

// Add records name as tracked under stage.
func (t Tracked) Add(stage Stage, name string) {
	set, ok := t[stage]
	if !ok {
		set = make(map[string]struct{})
		t[stage] = set
	}
	set[name] = struct{}{}
}

// Contains reports whether name is tracked under stage.
func (t Tracked) Contains(stage Stage, name string) bool {
	_, ok := t[stage][name]
	return ok
}

// Len returns the number of tracked names over all stages.
func (t Tracked) Len() int {
	n := 0
	for _, set := range t {
		n += len(set)
	}
	return n
}

// FilterTracked drops candidates already tracked under their own stage. The
// same name stays eligible under other stages.
func FilterTracked(candidates []*Candidate, tracked Tracked) []*Candidate {
	out := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if tracked.Contains(c.Stage, c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Lookups selects the reverse-dependency index used to judge the impact of
// each stage's candidates.
type Lookups map[Stage]*scanner.ReverseIndex

// LookupsFor returns the standard stage to suite mapping: ongoing and planned
// against unstable, finished against the baseline itself.
func LookupsFor(suites *scanner.Suites) Lookups {
	return Lookups{
		StageOngoing:  suites.Unstable.Index,
		StagePlanned:  suites.Unstable.Index,
		StageFinished: suites.Baseline.Index,
	}
}

// Resolve classifies candidates and keeps at most one per transition name.
// Candidates are visited in stage priority order, preserving the detection
// order within a stage, and the first survivor of a name wins.
func Resolve(candidates []*Candidate, lookups Lookups) []*Candidate {
	ordered := make([]*Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Stage.Priority() < ordered[j].Stage.Priority()
	})

	seen := make(map[string]struct{})
	out := make([]*Candidate, 0, len(ordered))
	for _, c := range ordered {
		if !Classify(c, lookups[c.Stage]) {
			continue
		}
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}
