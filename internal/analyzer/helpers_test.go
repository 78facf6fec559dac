package analyzer

import (
	"context"
	"strings"

	"github.com/blackwell-systems/autotrans/internal/archive"
	"github.com/blackwell-systems/autotrans/internal/scanner"
)

// bin builds a binary package. Each dep is one relation; "a|b" lists
// alternatives.
func bin(name, source, section string, deps ...string) *archive.BinaryPackage {
	pkg := &archive.BinaryPackage{
		Name:          name,
		Version:       "1.0",
		Architecture:  "amd64",
		Source:        source,
		SourceVersion: "1.0",
		Section:       section,
	}
	for _, dep := range deps {
		pkg.Depends = append(pkg.Depends, strings.Split(dep, "|"))
	}
	return pkg
}

func snapshot(sources []*archive.SourcePackage, binaries ...*archive.BinaryPackage) *archive.Snapshot {
	snap := archive.NewSnapshot()
	for _, src := range sources {
		snap.Sources[src.Name] = src
	}
	for _, b := range binaries {
		snap.Binaries[b.Name] = b
	}
	return snap
}

func indexed(name string, snap *archive.Snapshot) *scanner.Suite {
	s := scanner.NewSuite(name, &archive.Snapshot{Sources: snap.Sources})
	s.AttachBinaries(snap.Binaries)
	return s
}

func src(name string, binaries ...string) *archive.SourcePackage {
	return archive.NewSourcePackage(name, "1.0", binaries...)
}

type fakeLoader struct {
	baseline, unstable, experimental *archive.Snapshot

	candidateLoads int
}

func (f *fakeLoader) LoadSources(ctx context.Context) (*scanner.Suites, error) {
	return &scanner.Suites{
		Baseline:     scanner.NewSuite(scanner.SuiteBaseline, &archive.Snapshot{Sources: f.baseline.Sources}),
		Unstable:     scanner.NewSuite(scanner.SuiteUnstable, &archive.Snapshot{Sources: f.unstable.Sources}),
		Experimental: scanner.NewSuite(scanner.SuiteExperimental, &archive.Snapshot{Sources: f.experimental.Sources}),
	}, nil
}

func (f *fakeLoader) LoadBaselineBinaries(ctx context.Context, suites *scanner.Suites) error {
	suites.Baseline.AttachBinaries(f.baseline.Binaries)
	return nil
}

func (f *fakeLoader) LoadCandidateBinaries(ctx context.Context, suites *scanner.Suites) error {
	f.candidateLoads++
	suites.Unstable.AttachBinaries(f.unstable.Binaries)
	return nil
}
