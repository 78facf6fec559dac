package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/autotrans/internal/archive/archivetest"
)

func TestParseSources(t *testing.T) {
	input := strings.Join([]string{
		"Package: libfoo\nBinary: libfoo1, libfoo-dev\nVersion: 1.0-1\n",
		"Package: libfoo\nBinary: libfoo2,\n libfoo-dev\nVersion: 2.0-1\n",
		"Package: libfoo\nBinary: libfoo0\nVersion: 0.9-1\n",
		"Package: gcc-defaults\nBinary: gcc\nVersion: 1.0\nExtra-Source-Only: yes\n",
		"Package: bar\nBinary: bar\nVersion: 3\n",
	}, "\n")

	sources := make(map[string]*SourcePackage)
	require.NoError(t, ParseSources(strings.NewReader(input), sources))

	require.Len(t, sources, 2)
	require.Contains(t, sources, "libfoo")
	assert.Equal(t, "2.0-1", sources["libfoo"].Version)
	assert.Equal(t, []string{"libfoo-dev", "libfoo2"}, sources["libfoo"].BinaryNames())
	assert.NotContains(t, sources, "gcc-defaults", "Extra-Source-Only paragraphs must be skipped")
	assert.True(t, sources["bar"].HasBinary("bar"))
}

func TestParseBinaries(t *testing.T) {
	input := strings.Join([]string{
		archivetest.BinaryParagraph(archivetest.Binary{
			Name: "libfoo1", Version: "1.0-1+b1", Source: "libfoo (1.0-1)", Section: "libs",
			Depends: "libc6 (>= 2.34), libbar1 | libbar2", PreDepends: "multiarch-support",
		}),
		archivetest.BinaryParagraph(archivetest.Binary{Name: "foo-utils", Version: "1.0-1", Source: "libfoo"}),
		archivetest.BinaryParagraph(archivetest.Binary{Name: "bar", Version: "2", Architecture: "all"}),
		archivetest.BinaryParagraph(archivetest.Binary{Name: "bar", Version: "1", Architecture: "all"}),
	}, "\n")

	binaries := make(map[string]*BinaryPackage)
	require.NoError(t, ParseBinaries(strings.NewReader(input), binaries))
	require.Len(t, binaries, 3)

	lib := binaries["libfoo1"]
	assert.Equal(t, "libfoo", lib.Source)
	assert.Equal(t, "1.0-1", lib.SourceVersion)
	assert.Equal(t, "1.0-1+b1", lib.Version)
	assert.Equal(t, "libs", lib.Section)
	assert.Equal(t, [][]string{{"libc6"}, {"libbar1", "libbar2"}, {"multiarch-support"}}, lib.Depends)
	assert.Equal(t, []string{"libc6", "libbar1", "libbar2", "multiarch-support"}, lib.DependencyNames())

	utils := binaries["foo-utils"]
	assert.Equal(t, "libfoo", utils.Source)
	assert.Equal(t, "1.0-1", utils.SourceVersion)
	assert.Equal(t, SectionUnknown, utils.Section)

	bar := binaries["bar"]
	assert.Equal(t, "bar", bar.Source, "missing Source field defaults to the package name")
	assert.Equal(t, "2", bar.Version, "lower versions must not replace higher ones")
	assert.Equal(t, ArchAll, bar.Architecture)
}

func TestParseSourceField(t *testing.T) {
	tests := []struct {
		field       string
		wantSource  string
		wantVersion string
	}{
		{"", "pkg", "1.0"},
		{"src", "src", "1.0"},
		{"src (0.9-2)", "src", "0.9-2"},
		{"src ( 0.9-2 )", "src", "0.9-2"},
	}

	for _, tt := range tests {
		source, ver := parseSourceField(tt.field, "pkg", "1.0")
		assert.Equal(t, tt.wantSource, source, "field %q", tt.field)
		assert.Equal(t, tt.wantVersion, ver, "field %q", tt.field)
	}
}

func TestParseRelationsLoose(t *testing.T) {
	got := parseRelationsLoose("a (>= 1), b | c [amd64], , d:any")
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, got)
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0-1", "1.0-2", -1},
		{"1:0.9", "2.0", 1},
		{"1.0~rc1", "1.0", -1},
		{"2.0", "2.0", 0},
	}
	for _, tt := range tests {
		got := CompareVersions(tt.a, tt.b)
		switch {
		case tt.want < 0:
			assert.Negative(t, got, "%s vs %s", tt.a, tt.b)
		case tt.want > 0:
			assert.Positive(t, got, "%s vs %s", tt.a, tt.b)
		default:
			assert.Zero(t, got, "%s vs %s", tt.a, tt.b)
		}
	}
}

func TestOpenMirrorDist(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenMirrorDist(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrMalformedSnapshot)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.MkdirAll(empty, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(empty, "Release"), nil, 0644))
	_, err = OpenMirrorDist(empty)
	require.ErrorIs(t, err, ErrMalformedSnapshot)
	assert.Contains(t, err.Error(), "empty Release file")

	path := archivetest.Write(t, dir, "testing", archivetest.Dist{})
	dist, err := OpenMirrorDist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, dist.Components)
	assert.Equal(t, []string{"amd64"}, dist.Architectures)
	assert.Equal(t, []string{filepath.Join(path, "main", "source", "Sources")}, dist.SourcesFiles())
	assert.Equal(t, []string{filepath.Join(path, "main", "binary-amd64", "Packages")}, dist.PackagesFiles())
}

func TestLoadCompressedIndexes(t *testing.T) {
	for _, ext := range []string{"", ".gz", ".xz"} {
		t.Run("ext="+ext, func(t *testing.T) {
			path := archivetest.Write(t, t.TempDir(), "sid", archivetest.Dist{
				Compression: ext,
				Sources:     []archivetest.Source{{Name: "libfoo", Version: "2.0-1", Binaries: []string{"libfoo2"}}},
				Binaries:    []archivetest.Binary{{Name: "libfoo2", Version: "2.0-1", Source: "libfoo", Section: "libs"}},
			})

			dist, err := OpenMirrorDist(path)
			require.NoError(t, err)

			sources := make(map[string]*SourcePackage)
			require.NoError(t, LoadSources(dist, sources))
			assert.True(t, sources["libfoo"].HasBinary("libfoo2"))

			binaries := make(map[string]*BinaryPackage)
			require.NoError(t, LoadBinaries(dist, binaries))
			assert.Equal(t, "libs", binaries["libfoo2"].Section)
		})
	}
}

func TestLoadMissingIndex(t *testing.T) {
	path := archivetest.Write(t, t.TempDir(), "testing", archivetest.Dist{})
	require.NoError(t, os.Remove(filepath.Join(path, "main", "binary-amd64", "Packages")))

	dist, err := OpenMirrorDist(path)
	require.NoError(t, err)

	err = LoadBinaries(dist, make(map[string]*BinaryPackage))
	require.ErrorIs(t, err, ErrMalformedSnapshot)
	assert.Contains(t, err.Error(), "binary-amd64")
}

func TestFindIndex(t *testing.T) {
	path := archivetest.Write(t, t.TempDir(), "unstable", archivetest.Dist{Compression: ".gz"})
	base := filepath.Join(path, "main", "source", "Sources")

	got, err := FindIndex(base)
	require.NoError(t, err)
	assert.Equal(t, base+".gz", got)

	_, err = FindIndex(filepath.Join(path, "contrib", "source", "Sources"))
	assert.ErrorIs(t, err, ErrMalformedSnapshot)
}

func TestSnapshotCloneOverlay(t *testing.T) {
	base := NewSnapshot()
	base.Sources["libfoo"] = NewSourcePackage("libfoo", "1.0", "libfoo1")

	overlay := base.Clone()
	overlay.Sources["libfoo"] = NewSourcePackage("libfoo", "2.0", "libfoo2")
	overlay.Sources["new"] = NewSourcePackage("new", "1.0", "new")

	assert.Equal(t, "1.0", base.Sources["libfoo"].Version)
	assert.NotContains(t, base.Sources, "new")
	assert.Equal(t, []string{"libfoo", "new"}, overlay.SourceNames())
}
