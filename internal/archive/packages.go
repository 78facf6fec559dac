package archive

import (
	"fmt"
	"io"
	"strings"

	"pault.ag/go/debian/control"
	"pault.ag/go/debian/dependency"
)

// LoadSources reads every Sources index of dist into sources. Entries already
// present are replaced unless they carry a higher version, which lets a
// second suite be overlaid on a copy of the first.
func LoadSources(dist *MirrorDist, sources map[string]*SourcePackage) error {
	for _, base := range dist.SourcesFiles() {
		if err := loadIndex(base, func(r io.Reader) error { return ParseSources(r, sources) }); err != nil {
			return err
		}
	}
	return nil
}

// LoadBinaries reads every Packages index of dist into binaries, with the same
// replacement rule as LoadSources.
func LoadBinaries(dist *MirrorDist, binaries map[string]*BinaryPackage) error {
	for _, base := range dist.PackagesFiles() {
		if err := loadIndex(base, func(r io.Reader) error { return ParseBinaries(r, binaries) }); err != nil {
			return err
		}
	}
	return nil
}

func loadIndex(base string, parse func(io.Reader) error) error {
	rc, path, err := openIndex(base)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := parse(rc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ParseSources parses a Sources index from r into sources.
func ParseSources(r io.Reader, sources map[string]*SourcePackage) error {
	return eachParagraph(r, func(para *control.Paragraph) error {
		// Sources only referenced by Built-Using produce no binaries.
		if para.Values["Extra-Source-Only"] == "yes" {
			return nil
		}

		name := strings.TrimSpace(para.Values["Package"])
		ver := strings.TrimSpace(para.Values["Version"])
		if name == "" {
			return nil
		}

		if existing, ok := sources[name]; ok && CompareVersions(existing.Version, ver) > 0 {
			return nil
		}

		sources[name] = NewSourcePackage(name, ver, splitList(para.Values["Binary"])...)
		return nil
	})
}

// ParseBinaries parses a Packages index from r into binaries.
func ParseBinaries(r io.Reader, binaries map[string]*BinaryPackage) error {
	return eachParagraph(r, func(para *control.Paragraph) error {
		name := strings.TrimSpace(para.Values["Package"])
		ver := strings.TrimSpace(para.Values["Version"])
		if name == "" {
			return nil
		}

		// arch:all binaries may be listed once per architecture with
		// different versions when some architectures are out of date.
		if existing, ok := binaries[name]; ok && CompareVersions(existing.Version, ver) > 0 {
			return nil
		}

		source, sourceVersion := parseSourceField(para.Values["Source"], name, ver)

		section := strings.TrimSpace(para.Values["Section"])
		if section == "" {
			section = SectionUnknown
		}

		var depends [][]string
		depends = append(depends, parseRelations(para.Values["Depends"])...)
		depends = append(depends, parseRelations(para.Values["Pre-Depends"])...)

		binaries[name] = &BinaryPackage{
			Name:          name,
			Version:       ver,
			Architecture:  strings.TrimSpace(para.Values["Architecture"]),
			Source:        source,
			SourceVersion: sourceVersion,
			Section:       section,
			Depends:       depends,
		}
		return nil
	})
}

func eachParagraph(r io.Reader, fn func(*control.Paragraph) error) error {
	reader, err := control.NewParagraphReader(r, nil)
	if err != nil {
		return err
	}
	for {
		para, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if para == nil {
			return nil
		}
		if err := fn(para); err != nil {
			return err
		}
	}
}

// parseSourceField splits a binary's Source field. "foo (1.2-3)" names the
// source and the version it was built from; an empty field means the binary
// is named after its source.
func parseSourceField(field, pkg, ver string) (string, string) {
	field = strings.TrimSpace(field)
	if field == "" {
		return pkg, ver
	}
	idx := strings.IndexByte(field, '(')
	if idx < 0 {
		return field, ver
	}
	source := strings.TrimSpace(field[:idx])
	sourceVersion := strings.TrimSpace(strings.TrimRight(field[idx+1:], " )"))
	if sourceVersion == "" {
		sourceVersion = ver
	}
	return source, sourceVersion
}

// parseRelations returns the alternatives of every relation in a dependency
// field. Version constraints and architecture qualifiers are dropped.
func parseRelations(field string) [][]string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}

	dep, err := dependency.Parse(field)
	if err != nil {
		return parseRelationsLoose(field)
	}

	relations := make([][]string, 0, len(dep.Relations))
	for _, rel := range dep.Relations {
		alternatives := make([]string, 0, len(rel.Possibilities))
		for _, possi := range rel.Possibilities {
			if possi.Name == "" {
				continue
			}
			alternatives = append(alternatives, possi.Name)
		}
		if len(alternatives) > 0 {
			relations = append(relations, alternatives)
		}
	}
	return relations
}

// parseRelationsLoose handles fields the strict parser rejects by keeping the
// leading package name of every alternative.
func parseRelationsLoose(field string) [][]string {
	var relations [][]string
	for _, rel := range strings.Split(field, ",") {
		var alternatives []string
		for _, alt := range strings.Split(rel, "|") {
			name := strings.TrimSpace(alt)
			if i := strings.IndexAny(name, " ([<:"); i >= 0 {
				name = name[:i]
			}
			if name != "" {
				alternatives = append(alternatives, name)
			}
		}
		if len(alternatives) > 0 {
			relations = append(relations, alternatives)
		}
	}
	return relations
}

func splitList(field string) []string {
	var out []string
	for _, item := range strings.Split(field, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
