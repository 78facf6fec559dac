package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/blackwell-systems/autotrans/internal/scanner"
)

// SuiteLoader supplies the three suites in the order the pipeline needs them.
// Candidate binaries are only requested when something is left to classify.
type SuiteLoader interface {
	LoadSources(ctx context.Context) (*scanner.Suites, error)
	LoadBaselineBinaries(ctx context.Context, suites *scanner.Suites) error
	LoadCandidateBinaries(ctx context.Context, suites *scanner.Suites) error
}

// Pipeline runs detection, tracked filtering, classification and
// deduplication over one set of suites.
type Pipeline struct {
	loader  SuiteLoader
	tracked Tracked
	logger  *log.Logger
}

// NewPipeline creates a Pipeline. A nil tracked set tracks nothing and a nil
// logger falls back to log.Default().
func NewPipeline(loader SuiteLoader, tracked Tracked, logger *log.Logger) *Pipeline {
	if tracked == nil {
		tracked = NewTracked()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{loader: loader, tracked: tracked, logger: logger}
}

// Result is the outcome of one pipeline run.
type Result struct {
	Suites *scanner.Suites
	// Detected counts candidates before tracked filtering, Pending after it.
	Detected   int
	Pending    int
	Candidates []*Candidate
}

// Run executes the pipeline. Only suite loading can fail; an empty
// Candidates slice is a valid outcome.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	suites, err := p.loader.LoadSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	if err := p.loader.LoadBaselineBinaries(ctx, suites); err != nil {
		return nil, fmt.Errorf("failed to load baseline binaries: %w", err)
	}
	p.logger.Info("Loaded baseline",
		"sources", humanize.Comma(int64(len(suites.Baseline.Sources))),
		"binaries", humanize.Comma(int64(len(suites.Baseline.Binaries))),
		"elapsed", time.Since(start).Round(time.Millisecond))

	detected := Detect(suites)
	pending := FilterTracked(detected, p.tracked)
	p.logger.Info("Detected transitions", "detected", len(detected), "untracked", len(pending))

	result := &Result{Suites: suites, Detected: len(detected), Pending: len(pending)}
	if len(pending) == 0 {
		return result, nil
	}

	if err := p.loader.LoadCandidateBinaries(ctx, suites); err != nil {
		return nil, fmt.Errorf("failed to load candidate binaries: %w", err)
	}
	p.logger.Debug("Loaded unstable binaries",
		"binaries", humanize.Comma(int64(len(suites.Unstable.Binaries))))

	result.Candidates = Resolve(pending, LookupsFor(suites))
	for _, c := range result.Candidates {
		p.logger.Debug("Proposing transition", "name", c.Name, "stage", c.Stage,
			"added", len(c.Added), "removed", len(c.Removed))
	}
	p.logger.Info("Classified transitions", "proposed", len(result.Candidates),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return result, nil
}

// Detect runs every detector over suites in stage priority order. The
// baseline must be indexed; candidate suites only need their sources.
func Detect(suites *scanner.Suites) []*Candidate {
	out := DetectTransitions(suites.Baseline, suites.Unstable.Snapshot, StageOngoing)
	out = append(out, DetectTransitions(suites.Baseline, suites.Experimental.Snapshot, StagePlanned)...)
	out = append(out, DetectNearlyFinished(suites.Baseline, StageFinished)...)
	return out
}
