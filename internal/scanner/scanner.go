package scanner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/autotrans/internal/archive"
)

// Suite names used in logs and explanations.
const (
	SuiteBaseline     = "baseline"
	SuiteUnstable     = "unstable"
	SuiteExperimental = "experimental"
)

// Suite is a snapshot together with its reverse-dependency index. Index is
// nil until binaries have been attached.
type Suite struct {
	Name string
	*archive.Snapshot
	Index *ReverseIndex
}

// NewSuite wraps snap. A nil snap starts empty.
func NewSuite(name string, snap *archive.Snapshot) *Suite {
	if snap == nil {
		snap = archive.NewSnapshot()
	}
	return &Suite{Name: name, Snapshot: snap}
}

// AttachBinaries installs the complete binary mapping of the suite and builds
// its index. Readers must not use the suite until this returns.
func (s *Suite) AttachBinaries(binaries map[string]*archive.BinaryPackage) {
	s.Binaries = binaries
	s.Index = BuildReverseIndex(binaries)
}

// Indexed reports whether binaries have been attached.
func (s *Suite) Indexed() bool {
	return s.Index != nil
}

// Suites groups the baseline and the two candidate suites. Experimental is an
// overlay of sources only: unstable with experimental's sources on top. Its
// binaries are never loaded.
type Suites struct {
	Baseline     *Suite
	Unstable     *Suite
	Experimental *Suite
}

// Paths names the mirror distribution directories of the three suites.
type Paths struct {
	Baseline     string
	Unstable     string
	Experimental string
}

// Loader reads suites from a local mirror.
type Loader struct {
	baseline     *archive.MirrorDist
	unstable     *archive.MirrorDist
	experimental *archive.MirrorDist
}

// NewLoader validates the Release file of every distribution up front so a
// malformed mirror aborts before any index is read.
func NewLoader(paths Paths) (*Loader, error) {
	baseline, err := archive.OpenMirrorDist(paths.Baseline)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline suite: %w", err)
	}
	unstable, err := archive.OpenMirrorDist(paths.Unstable)
	if err != nil {
		return nil, fmt.Errorf("failed to open unstable suite: %w", err)
	}
	experimental, err := archive.OpenMirrorDist(paths.Experimental)
	if err != nil {
		return nil, fmt.Errorf("failed to open experimental suite: %w", err)
	}
	return &Loader{baseline: baseline, unstable: unstable, experimental: experimental}, nil
}

// LoadSources reads the source mappings of all three suites. Baseline and
// unstable are read concurrently; experimental is overlaid on unstable.
func (l *Loader) LoadSources(ctx context.Context) (*Suites, error) {
	baseline := archive.NewSnapshot()
	unstable := archive.NewSnapshot()
	var experimental *archive.Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := archive.LoadSources(l.baseline, baseline.Sources); err != nil {
			return fmt.Errorf("failed to read baseline sources: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := archive.LoadSources(l.unstable, unstable.Sources); err != nil {
			return fmt.Errorf("failed to read unstable sources: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		experimental = unstable.Clone()
		if err := archive.LoadSources(l.experimental, experimental.Sources); err != nil {
			return fmt.Errorf("failed to read experimental sources: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Suites{
		Baseline:     NewSuite(SuiteBaseline, baseline),
		Unstable:     NewSuite(SuiteUnstable, unstable),
		Experimental: NewSuite(SuiteExperimental, experimental),
	}, nil
}

// LoadBaselineBinaries reads and indexes the baseline binaries.
func (l *Loader) LoadBaselineBinaries(ctx context.Context, suites *Suites) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	binaries := make(map[string]*archive.BinaryPackage)
	if err := archive.LoadBinaries(l.baseline, binaries); err != nil {
		return fmt.Errorf("failed to read baseline binaries: %w", err)
	}
	suites.Baseline.AttachBinaries(binaries)
	return nil
}

// LoadCandidateBinaries reads and indexes the unstable binaries. Impact of
// both the ongoing and the planned stage is judged against them, so the
// experimental Packages indexes are never read.
func (l *Loader) LoadCandidateBinaries(ctx context.Context, suites *Suites) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unstable := make(map[string]*archive.BinaryPackage)
	if err := archive.LoadBinaries(l.unstable, unstable); err != nil {
		return fmt.Errorf("failed to read unstable binaries: %w", err)
	}
	suites.Unstable.AttachBinaries(unstable)
	return nil
}
