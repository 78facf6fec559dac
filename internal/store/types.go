package store

import "time"

// Run records one invocation of the detection pipeline.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time // zero while the run is in progress
	Baseline      string
	Unstable      string
	Experimental  string
	Dest          string
	DryRun        bool
	ProposedCount int
}

// Proposal is a transition proposed by a run. WrittenPath is empty for dry
// runs.
type Proposal struct {
	RunID       string
	Name        string
	Stage       string
	Source      string
	Added       []string
	Removed     []string
	Notes       map[string]string
	WrittenPath string
}
