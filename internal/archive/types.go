package archive

import "sort"

// ArchAll is the architecture of architecture-independent binaries.
const ArchAll = "all"

// SectionUnknown is used when a binary paragraph carries no Section field.
const SectionUnknown = "N/A"

// SourcePackage represents the highest version of a source package seen in a
// suite, together with the binary packages it currently declares.
type SourcePackage struct {
	Name     string
	Version  string
	Binaries map[string]struct{}
}

// NewSourcePackage builds a SourcePackage from a list of binary names.
func NewSourcePackage(name, version string, binaries ...string) *SourcePackage {
	set := make(map[string]struct{}, len(binaries))
	for _, b := range binaries {
		set[b] = struct{}{}
	}
	return &SourcePackage{Name: name, Version: version, Binaries: set}
}

// HasBinary reports whether the source declares the named binary.
func (s *SourcePackage) HasBinary(name string) bool {
	_, ok := s.Binaries[name]
	return ok
}

// BinaryNames returns the declared binaries in sorted order.
func (s *SourcePackage) BinaryNames() []string {
	names := make([]string, 0, len(s.Binaries))
	for name := range s.Binaries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BinaryPackage represents the highest version of a binary package seen in a
// suite.
type BinaryPackage struct {
	Name          string
	Version       string
	Architecture  string // ArchAll for architecture-independent packages
	Source        string
	SourceVersion string // differs from Version for binNMUs and lagging binaries
	Section       string
	// Depends holds Depends followed by Pre-Depends. Each entry is one
	// comma-separated relation, expanded into its "|" alternatives.
	Depends [][]string
}

// DependencyNames returns every package name mentioned in Depends, in
// declaration order and without duplicates.
func (b *BinaryPackage) DependencyNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, alternatives := range b.Depends {
		for _, name := range alternatives {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// Snapshot holds the source and binary packages of one suite at one point in
// time. Records are never mutated after ingestion, so snapshots derived with
// Clone may share them.
type Snapshot struct {
	Sources  map[string]*SourcePackage
	Binaries map[string]*BinaryPackage
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Sources:  make(map[string]*SourcePackage),
		Binaries: make(map[string]*BinaryPackage),
	}
}

// Clone returns a snapshot with copies of both maps. Loading another suite
// into the clone overlays it without touching the original.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Sources:  make(map[string]*SourcePackage, len(s.Sources)),
		Binaries: make(map[string]*BinaryPackage, len(s.Binaries)),
	}
	for name, src := range s.Sources {
		out.Sources[name] = src
	}
	for name, bin := range s.Binaries {
		out.Binaries[name] = bin
	}
	return out
}

// SourceNames returns the names of all source packages in sorted order.
func (s *Snapshot) SourceNames() []string {
	names := make([]string, 0, len(s.Sources))
	for name := range s.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
