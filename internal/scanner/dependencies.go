package scanner

import (
	"sort"

	"github.com/blackwell-systems/autotrans/internal/archive"
)

// ReverseIndex maps every binary package of a suite to the binaries that
// depend on it. Every alternative of a relation counts as an edge, since the
// alternative actually chosen at install time is unknown.
//
// The index keeps names only; package records stay free of back-pointers.
type ReverseIndex struct {
	binaries   map[string]*archive.BinaryPackage
	dependents map[string]map[string]struct{}
}

// BuildReverseIndex indexes binaries. The mapping must be complete: edges to
// packages missing from it are skipped.
func BuildReverseIndex(binaries map[string]*archive.BinaryPackage) *ReverseIndex {
	idx := &ReverseIndex{
		binaries:   binaries,
		dependents: make(map[string]map[string]struct{}),
	}
	idx.Index()
	return idx
}

// Index inserts the edges of every binary. Edges are sets, so indexing the
// same mapping again adds nothing.
func (idx *ReverseIndex) Index() {
	for name, pkg := range idx.binaries {
		for _, alternatives := range pkg.Depends {
			for _, dep := range alternatives {
				if _, ok := idx.binaries[dep]; !ok {
					continue
				}
				set, ok := idx.dependents[dep]
				if !ok {
					set = make(map[string]struct{})
					idx.dependents[dep] = set
				}
				set[name] = struct{}{}
			}
		}
	}
}

// Len returns the number of binaries with at least one dependent.
func (idx *ReverseIndex) Len() int {
	return len(idx.dependents)
}

// Binary returns the indexed record for name.
func (idx *ReverseIndex) Binary(name string) (*archive.BinaryPackage, bool) {
	pkg, ok := idx.binaries[name]
	return pkg, ok
}

// Dependents returns the binaries depending on name, sorted. Unknown names
// have no dependents.
func (idx *ReverseIndex) Dependents(name string) []string {
	set := idx.dependents[name]
	out := make([]string, 0, len(set))
	for dep := range set {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

// HasDependents reports whether anything depends on name.
func (idx *ReverseIndex) HasDependents(name string) bool {
	return len(idx.dependents[name]) > 0
}

// HasExternalDependents reports whether a binary built from a source other
// than source depends on name.
func (idx *ReverseIndex) HasExternalDependents(source, name string) bool {
	for dep := range idx.dependents[name] {
		if pkg, ok := idx.binaries[dep]; ok && pkg.Source != source {
			return true
		}
	}
	return false
}

// HasDependentsOutside reports whether a binary not listed in set depends on
// name.
func (idx *ReverseIndex) HasDependentsOutside(name string, set map[string]struct{}) bool {
	for dep := range idx.dependents[name] {
		if _, ok := set[dep]; !ok {
			return true
		}
	}
	return false
}

// ExternalDependents returns the dependents of name built from a source
// other than source, sorted.
func (idx *ReverseIndex) ExternalDependents(source, name string) []string {
	var out []string
	for _, dep := range idx.Dependents(name) {
		if pkg, ok := idx.binaries[dep]; ok && pkg.Source != source {
			out = append(out, dep)
		}
	}
	return out
}
