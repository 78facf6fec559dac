package analyzer

import "fmt"

// Stage is the tier a transition is proposed under. Lower priority values win
// when the same transition is proposed by several stages.
type Stage string

const (
	StageOngoing  Stage = "ongoing"  // baseline vs. unstable
	StagePlanned  Stage = "planned"  // baseline vs. experimental overlaid on unstable
	StageFinished Stage = "finished" // stale binaries left in the baseline
)

// Stages lists every stage in priority order.
var Stages = []Stage{StageOngoing, StagePlanned, StageFinished}

// Priority returns the position of s in Stages; unknown stages sort last.
func (s Stage) Priority() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return len(Stages)
}

// ParseStage validates a stage name.
func ParseStage(name string) (Stage, error) {
	for _, stage := range Stages {
		if string(stage) == name {
			return stage, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q (want ongoing, planned or finished)", name)
}

// RemovalSuffix marks a transition caused by a source disappearing, keeping
// its name distinct from a replacement transition of the same source.
const RemovalSuffix = "-rm"

// RemovalName returns the transition name used when source is removed.
func RemovalName(source string) string {
	return source + RemovalSuffix
}

// NoteSmoothUpdate is the note key carrying smooth-update eligibility.
const NoteSmoothUpdate = "can-smooth-update"

// Smooth-update note values.
const (
	SmoothMaybe         = "maybe"
	SmoothMaybeIgnoring = "maybe (ignoring rdep-less binaries)"
)

// Candidate is a proposed transition of one source under one stage.
type Candidate struct {
	Name    string            `json:"name" yaml:"name"`
	Source  string            `json:"source" yaml:"source"`
	Added   []string          `json:"added" yaml:"added"`     // sorted
	Removed []string          `json:"removed" yaml:"removed"` // sorted
	Stage   Stage             `json:"stage" yaml:"stage"`
	Notes   map[string]string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// IsRemoval reports whether the candidate tracks the removal of its source.
func (c *Candidate) IsRemoval() bool {
	return c.Name != c.Source
}
