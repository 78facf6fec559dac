// Package tracker reads and writes the transition tracker files of a
// release dashboard checkout: one directory per stage holding a .ben file
// per tracked transition.
package tracker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/autotrans/internal/analyzer"
)

const (
	// FileExt is the extension of tracker files.
	FileExt = ".ben"
	// AutoPrefix starts the file name of every tracker this tool writes.
	AutoPrefix = "auto-"
)

// FindExisting lists the transitions already tracked under each stage of
// dest. A tracker named after a removal is also registered under its source
// name, and the auto- prefix of generated trackers is ignored so a second
// run does not propose them again. A missing stage directory tracks nothing.
func FindExisting(dest string) (analyzer.Tracked, error) {
	tracked := analyzer.NewTracked()

	for _, stage := range analyzer.Stages {
		dir := filepath.Join(dest, string(stage))
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stage directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileExt) {
				continue
			}
			for _, name := range trackedNames(strings.TrimSuffix(entry.Name(), FileExt)) {
				tracked.Add(stage, name)
			}
		}
	}

	return tracked, nil
}

// trackedNames expands one tracker base name into every name it covers.
func trackedNames(base string) []string {
	names := []string{base}
	if trimmed, ok := strings.CutPrefix(base, AutoPrefix); ok && trimmed != "" {
		names = append(names, trimmed)
	}
	for _, name := range names {
		if source, ok := strings.CutSuffix(name, analyzer.RemovalSuffix); ok && source != "" {
			names = append(names, source)
		}
	}
	return names
}
