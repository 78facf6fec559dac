package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pault.ag/go/debian/control"
)

// ErrMalformedSnapshot is returned when a suite's metadata is missing or empty.
// Nothing can be detected from a partial suite, so callers treat it as fatal.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// MirrorDist describes one distribution directory of a Debian mirror, e.g.
// /srv/mirror/debian/dists/testing.
type MirrorDist struct {
	Path          string
	Components    []string
	Architectures []string
}

// OpenMirrorDist reads the Release file under path and returns the layout of
// the distribution.
func OpenMirrorDist(path string) (*MirrorDist, error) {
	releaseFile := filepath.Join(path, "Release")
	f, err := os.Open(releaseFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: missing Release file: %s", ErrMalformedSnapshot, releaseFile)
		}
		return nil, fmt.Errorf("failed to open %s: %w", releaseFile, err)
	}
	defer f.Close()

	reader, err := control.NewParagraphReader(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", releaseFile, err)
	}

	para, err := reader.Next()
	if err == io.EOF || (err == nil && para == nil) {
		return nil, fmt.Errorf("%w: empty Release file (no paragraphs): %s", ErrMalformedSnapshot, releaseFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", releaseFile, err)
	}

	components := strings.Fields(para.Values["Components"])
	architectures := strings.Fields(para.Values["Architectures"])
	if len(components) == 0 || len(architectures) == 0 {
		return nil, fmt.Errorf("%w: Release file lacks Components or Architectures: %s",
			ErrMalformedSnapshot, releaseFile)
	}

	return &MirrorDist{
		Path:          path,
		Components:    components,
		Architectures: architectures,
	}, nil
}

// SourcesFiles returns the Sources index of every component, without a
// compression extension.
func (m *MirrorDist) SourcesFiles() []string {
	files := make([]string, 0, len(m.Components))
	for _, comp := range m.Components {
		files = append(files, filepath.Join(m.Path, comp, "source", "Sources"))
	}
	return files
}

// PackagesFiles returns the Packages index of every component/architecture
// pair, without a compression extension.
func (m *MirrorDist) PackagesFiles() []string {
	files := make([]string, 0, len(m.Components)*len(m.Architectures))
	for _, comp := range m.Components {
		for _, arch := range m.Architectures {
			files = append(files, filepath.Join(m.Path, comp, "binary-"+arch, "Packages"))
		}
	}
	return files
}
