package analyzer

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/autotrans/internal/scanner"
)

// ErrUnknownSource is returned by Explain for a source absent from every suite.
var ErrUnknownSource = errors.New("source not found in any suite")

// SuiteView is what one suite says about a source.
type SuiteView struct {
	Suite    string
	Present  bool
	Version  string
	Binaries []string
}

// Verdict is the outcome for one stage.
type Verdict struct {
	Stage     Stage
	Candidate *Candidate // nil when nothing was detected
	Proposed  bool
	Reason    string
}

// Explanation describes how a single source is handled by the pipeline.
type Explanation struct {
	Source string
	Suites []SuiteView
	// Dependents maps every baseline binary of the source to the binaries of
	// other sources depending on it.
	Dependents map[string][]string
	Verdicts   []Verdict
}

// Explain reruns detection and classification for source alone and reports
// every decision. Baseline and unstable must be indexed.
func Explain(suites *scanner.Suites, tracked Tracked, source string) (*Explanation, error) {
	if tracked == nil {
		tracked = NewTracked()
	}

	exp := &Explanation{Source: source, Dependents: make(map[string][]string)}
	found := false
	for _, s := range []*scanner.Suite{suites.Baseline, suites.Unstable, suites.Experimental} {
		view := SuiteView{Suite: s.Name}
		if src, ok := s.Sources[source]; ok {
			found = true
			view.Present = true
			view.Version = src.Version
			view.Binaries = src.BinaryNames()
		}
		exp.Suites = append(exp.Suites, view)
	}

	var leftovers []*Candidate
	for _, c := range DetectNearlyFinished(suites.Baseline, StageFinished) {
		if c.Source == source {
			leftovers = append(leftovers, c)
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}

	if src, ok := suites.Baseline.Sources[source]; ok {
		for _, bin := range src.BinaryNames() {
			exp.Dependents[bin] = suites.Baseline.Index.ExternalDependents(source, bin)
		}
	}

	baseline := scanner.NewSuite(suites.Baseline.Name, suites.Baseline.Snapshot.Clone())
	baseline.Index = suites.Baseline.Index
	for name := range baseline.Sources {
		if name != source {
			delete(baseline.Sources, name)
		}
	}

	byStage := map[Stage][]*Candidate{
		StageOngoing:  DetectTransitions(baseline, suites.Unstable.Snapshot, StageOngoing),
		StagePlanned:  DetectTransitions(baseline, suites.Experimental.Snapshot, StagePlanned),
		StageFinished: leftovers,
	}

	lookups := LookupsFor(suites)
	winners := make(map[string]Stage)
	for _, stage := range Stages {
		cands := byStage[stage]
		if len(cands) == 0 {
			exp.Verdicts = append(exp.Verdicts, Verdict{Stage: stage, Reason: "no transition detected"})
			continue
		}
		c := cands[0]
		v := Verdict{Stage: stage, Candidate: c}
		reason := discardReason(c, lookups[stage])
		winner, superseded := winners[c.Name]
		switch {
		case tracked.Contains(stage, c.Name):
			v.Reason = "already tracked"
		case reason != "":
			v.Reason = "discarded: " + reason
		case superseded:
			v.Reason = "superseded by " + string(winner)
		default:
			v.Proposed = true
			v.Reason = "proposed"
			winners[c.Name] = stage
		}
		exp.Verdicts = append(exp.Verdicts, v)
	}

	return exp, nil
}
