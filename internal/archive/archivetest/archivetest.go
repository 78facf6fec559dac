// Package archivetest writes small Debian mirror layouts for tests.
package archivetest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Source is one paragraph of a Sources index.
type Source struct {
	Name            string
	Version         string
	Binaries        []string
	ExtraSourceOnly bool
}

// Binary is one paragraph of a Packages index. Empty Architecture defaults to
// amd64; empty Source omits the field.
type Binary struct {
	Name         string
	Version      string
	Architecture string
	Source       string
	Section      string
	Depends      string
	PreDepends   string
}

// Dist is a single-component, single-architecture distribution.
type Dist struct {
	Sources  []Source
	Binaries []Binary
	// Compression is the index extension to write: "", ".gz" or ".xz".
	Compression string
}

// Write lays out d under dir/name and returns the distribution path.
func Write(t *testing.T, dir, name string, d Dist) string {
	t.Helper()

	root := filepath.Join(dir, name)
	writeFile(t, filepath.Join(root, "Release"), []byte(
		"Origin: Debian\nSuite: "+name+"\nComponents: main\nArchitectures: amd64\n"))

	var src bytes.Buffer
	for _, s := range d.Sources {
		src.WriteString(SourceParagraph(s))
		src.WriteString("\n")
	}
	writeIndex(t, filepath.Join(root, "main", "source", "Sources"), d.Compression, src.Bytes())

	var bin bytes.Buffer
	for _, b := range d.Binaries {
		bin.WriteString(BinaryParagraph(b))
		bin.WriteString("\n")
	}
	writeIndex(t, filepath.Join(root, "main", "binary-amd64", "Packages"), d.Compression, bin.Bytes())

	return root
}

// SourceParagraph renders s in Sources format.
func SourceParagraph(s Source) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Package: %s\n", s.Name)
	fmt.Fprintf(&sb, "Binary: %s\n", strings.Join(s.Binaries, ", "))
	fmt.Fprintf(&sb, "Version: %s\n", s.Version)
	if s.ExtraSourceOnly {
		sb.WriteString("Extra-Source-Only: yes\n")
	}
	return sb.String()
}

// BinaryParagraph renders b in Packages format.
func BinaryParagraph(b Binary) string {
	arch := b.Architecture
	if arch == "" {
		arch = "amd64"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Package: %s\n", b.Name)
	if b.Source != "" {
		fmt.Fprintf(&sb, "Source: %s\n", b.Source)
	}
	fmt.Fprintf(&sb, "Version: %s\n", b.Version)
	fmt.Fprintf(&sb, "Architecture: %s\n", arch)
	if b.Section != "" {
		fmt.Fprintf(&sb, "Section: %s\n", b.Section)
	}
	if b.PreDepends != "" {
		fmt.Fprintf(&sb, "Pre-Depends: %s\n", b.PreDepends)
	}
	if b.Depends != "" {
		fmt.Fprintf(&sb, "Depends: %s\n", b.Depends)
	}
	return sb.String()
}

func writeIndex(t *testing.T, base, ext string, data []byte) {
	t.Helper()

	switch ext {
	case "":
		writeFile(t, base, data)
	case ".gz":
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			t.Fatalf("gzip %s: %v", base, err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("gzip %s: %v", base, err)
		}
		writeFile(t, base+ext, buf.Bytes())
	case ".xz":
		var buf bytes.Buffer
		zw, err := xz.NewWriter(&buf)
		if err != nil {
			t.Fatalf("xz %s: %v", base, err)
		}
		if _, err := zw.Write(data); err != nil {
			t.Fatalf("xz %s: %v", base, err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("xz %s: %v", base, err)
		}
		writeFile(t, base+ext, buf.Bytes())
	default:
		t.Fatalf("unsupported compression %q", ext)
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
