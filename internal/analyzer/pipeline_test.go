package analyzer

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/autotrans/internal/archive"
)

// newLibfooLoader describes libfoo moving from libfoo1 to libfoo2 in
// unstable and on to libfoo3 in experimental, with bar depending on the
// library in every suite. baz in unstable has not been rebuilt yet and still
// needs libfoo1.
func newLibfooLoader() *fakeLoader {
	baseline := snapshot(
		[]*archive.SourcePackage{src("libfoo", "libfoo1"), src("bar", "bar")},
		bin("libfoo1", "libfoo", "libs"),
		bin("bar", "bar", "utils", "libfoo1"),
	)
	unstable := snapshot(
		[]*archive.SourcePackage{src("libfoo", "libfoo2"), src("bar", "bar")},
		bin("libfoo2", "libfoo", "libs"),
		bin("bar", "bar", "utils", "libfoo2"),
		bin("baz", "baz", "utils", "libfoo1"),
	)
	experimental := unstable.Clone()
	experimental.Sources["libfoo"] = src("libfoo", "libfoo3")
	delete(experimental.Binaries, "libfoo2")
	experimental.Binaries["libfoo3"] = bin("libfoo3", "libfoo", "libs")
	experimental.Binaries["bar"] = bin("bar", "bar", "utils", "libfoo3")

	return &fakeLoader{baseline: baseline, unstable: unstable, experimental: experimental}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestPipeline_Run(t *testing.T) {
	loader := newLibfooLoader()

	result, err := NewPipeline(loader, nil, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Detected)
	assert.Equal(t, 2, result.Pending)
	assert.Equal(t, 1, loader.candidateLoads)
	require.Len(t, result.Candidates, 1)

	c := result.Candidates[0]
	assert.Equal(t, "libfoo", c.Name)
	assert.Equal(t, StageOngoing, c.Stage)
	assert.Equal(t, []string{"libfoo2"}, c.Added)
	assert.Equal(t, []string{"libfoo1"}, c.Removed)
	assert.Equal(t, SmoothMaybe, c.Notes[NoteSmoothUpdate])
}

func TestPipeline_TrackedPerStage(t *testing.T) {
	loader := newLibfooLoader()
	tracked := NewTracked()
	tracked.Add(StageOngoing, "libfoo")

	result, err := NewPipeline(loader, tracked, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, StagePlanned, result.Candidates[0].Stage)
	assert.Equal(t, []string{"libfoo3"}, result.Candidates[0].Added)
}

func TestPipeline_PlannedImpactJudgedAgainstUnstable(t *testing.T) {
	// Only experimental makes bar depend on the new library; unstable bar
	// dropped the dependency altogether.
	baseline := snapshot(
		[]*archive.SourcePackage{src("libfoo", "libfoo1"), src("bar", "bar")},
		bin("libfoo1", "libfoo", "libs"),
		bin("bar", "bar", "utils", "libfoo1"),
	)
	unstable := snapshot(
		[]*archive.SourcePackage{src("libfoo", "libfoo1"), src("bar", "bar")},
		bin("libfoo1", "libfoo", "libs"),
		bin("bar", "bar", "utils"),
	)
	experimental := unstable.Clone()
	experimental.Sources["libfoo"] = src("libfoo", "libfoo2")
	experimental.Binaries["libfoo2"] = bin("libfoo2", "libfoo", "libs")
	experimental.Binaries["bar"] = bin("bar", "bar", "utils", "libfoo2")

	loader := &fakeLoader{baseline: baseline, unstable: unstable, experimental: experimental}
	result, err := NewPipeline(loader, nil, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pending)
	assert.Equal(t, 1, loader.candidateLoads)
	assert.Empty(t, result.Candidates, "no unstable binary depends on libfoo1 or libfoo2")

	lookups := LookupsFor(result.Suites)
	assert.Same(t, result.Suites.Unstable.Index, lookups[StagePlanned])
}

func TestPipeline_SkipsCandidateBinariesWhenAllTracked(t *testing.T) {
	loader := newLibfooLoader()
	tracked := NewTracked()
	tracked.Add(StageOngoing, "libfoo")
	tracked.Add(StagePlanned, "libfoo")

	result, err := NewPipeline(loader, tracked, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Detected)
	assert.Equal(t, 0, result.Pending)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, 0, loader.candidateLoads)
	assert.False(t, result.Suites.Unstable.Indexed())
}

func TestPipeline_NoChanges(t *testing.T) {
	base := snapshot(
		[]*archive.SourcePackage{src("libfoo", "libfoo1")},
		bin("libfoo1", "libfoo", "libs"),
	)
	loader := &fakeLoader{baseline: base, unstable: base, experimental: base}

	result, err := NewPipeline(loader, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Candidates)
	assert.Equal(t, 0, loader.candidateLoads)
}
