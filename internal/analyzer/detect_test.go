package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/autotrans/internal/archive"
	"github.com/blackwell-systems/autotrans/internal/scanner"
)

func libfooBaseline() *scanner.Suite {
	return indexed(scanner.SuiteBaseline, snapshot(
		[]*archive.SourcePackage{src("libfoo", "libfoo1"), src("bar", "bar")},
		bin("libfoo1", "libfoo", "libs"),
		bin("bar", "bar", "utils", "libfoo1"),
	))
}

func TestDetectTransitions_Replacement(t *testing.T) {
	baseline := libfooBaseline()
	unstable := snapshot([]*archive.SourcePackage{src("libfoo", "libfoo2"), src("bar", "bar")})

	got := DetectTransitions(baseline, unstable, StageOngoing)

	require.Len(t, got, 1)
	assert.Equal(t, &Candidate{
		Name:    "libfoo",
		Source:  "libfoo",
		Added:   []string{"libfoo2"},
		Removed: []string{"libfoo1"},
		Stage:   StageOngoing,
		Notes:   map[string]string{NoteSmoothUpdate: SmoothMaybe},
	}, got[0])
}

func TestDetectTransitions_NoChange(t *testing.T) {
	baseline := libfooBaseline()

	tests := []struct {
		name     string
		binaries []string
	}{
		{"identical", []string{"libfoo1"}},
		{"strict growth", []string{"libfoo1", "libfoo1-dev"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unstable := snapshot([]*archive.SourcePackage{src("libfoo", tt.binaries...), src("bar", "bar")})
			assert.Empty(t, DetectTransitions(baseline, unstable, StageOngoing))
		})
	}
}

func TestDetectTransitions_Removal(t *testing.T) {
	t.Run("without outside dependents", func(t *testing.T) {
		baseline := indexed(scanner.SuiteBaseline, snapshot(
			[]*archive.SourcePackage{src("quux", "quux", "quux-data")},
			bin("quux", "quux", "utils", "quux-data"),
			bin("quux-data", "quux", "misc"),
		))

		got := DetectTransitions(baseline, archive.NewSnapshot(), StageOngoing)
		assert.Empty(t, got)
	})

	t.Run("with outside dependents", func(t *testing.T) {
		baseline := indexed(scanner.SuiteBaseline, snapshot(
			[]*archive.SourcePackage{src("quux", "quux"), src("bar", "bar")},
			bin("quux", "quux", "utils"),
			bin("bar", "bar", "utils", "quux"),
		))
		unstable := snapshot([]*archive.SourcePackage{src("bar", "bar")})

		got := DetectTransitions(baseline, unstable, StageOngoing)

		require.Len(t, got, 1)
		c := got[0]
		assert.Equal(t, "quux-rm", c.Name)
		assert.Equal(t, "quux", c.Source)
		assert.True(t, c.IsRemoval())
		assert.Empty(t, c.Added)
		assert.NotNil(t, c.Added)
		assert.Equal(t, []string{"quux"}, c.Removed)
		assert.Equal(t, "no - quux is not in libs or oldlibs", c.Notes[NoteSmoothUpdate])
	})
}

func TestDetectTransitions_Deterministic(t *testing.T) {
	baseline := indexed(scanner.SuiteBaseline, snapshot(
		[]*archive.SourcePackage{src("a", "a1"), src("b", "b1"), src("c", "c1"), src("user", "user")},
		bin("a1", "a", "libs"),
		bin("b1", "b", "libs"),
		bin("c1", "c", "libs"),
		bin("user", "user", "utils", "a1", "b1", "c1"),
	))
	unstable := snapshot([]*archive.SourcePackage{src("c", "c2"), src("a", "a2"), src("b", "b2")})

	first := DetectTransitions(baseline, unstable, StageOngoing)
	second := DetectTransitions(baseline, unstable, StageOngoing)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "a", first[0].Name)
	assert.Equal(t, "b", first[1].Name)
	assert.Equal(t, "c", first[2].Name)
}

func TestDetectNearlyFinished(t *testing.T) {
	libfoo := archive.NewSourcePackage("libfoo", "2.0", "libfoo2", "libfoo-doc")
	stale := bin("libfoo1", "libfoo", "libs")
	current := bin("libfoo2", "libfoo", "libs")
	current.SourceVersion = "2.0"
	doc := bin("libfoo-doc", "libfoo", "doc")
	doc.Architecture = archive.ArchAll
	orphan := bin("libgone0", "gone", "oldlibs")

	baseline := indexed(scanner.SuiteBaseline, snapshot(
		[]*archive.SourcePackage{libfoo},
		stale, current, doc, orphan,
	))

	got := DetectNearlyFinished(baseline, StageFinished)

	require.Len(t, got, 2)

	assert.Equal(t, "gone", got[0].Name)
	assert.Equal(t, []string{}, got[0].Added)
	assert.Equal(t, []string{"libgone0"}, got[0].Removed)
	assert.Equal(t, StageFinished, got[0].Stage)

	assert.Equal(t, "libfoo", got[1].Name)
	assert.Equal(t, []string{"libfoo-doc", "libfoo2"}, got[1].Added)
	assert.Equal(t, []string{"libfoo1"}, got[1].Removed)
	assert.Empty(t, got[1].Notes)
}

func TestDetectNearlyFinished_CurrentBinariesIgnored(t *testing.T) {
	baseline := libfooBaseline()
	assert.Empty(t, DetectNearlyFinished(baseline, StageFinished))
}
