package tracker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/autotrans/internal/analyzer"
)

// Writer stores tracker files under a dashboard checkout.
type Writer struct {
	dest string
}

// NewWriter creates a Writer rooted at dest.
func NewWriter(dest string) *Writer {
	return &Writer{dest: dest}
}

// Path returns where the tracker for c is written.
func (w *Writer) Path(c *analyzer.Candidate) string {
	return filepath.Join(w.dest, string(c.Stage), AutoPrefix+c.Name+FileExt)
}

// Write renders c and stores it, replacing any previous file of the same
// name. It returns the written path.
func (w *Writer) Write(c *analyzer.Candidate) (string, error) {
	dir := filepath.Join(w.dest, string(c.Stage))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create stage directory: %w", err)
	}

	path := w.Path(c)
	if err := os.WriteFile(path, []byte(RenderBen(c)), 0644); err != nil {
		return "", fmt.Errorf("failed to write tracker %s: %w", path, err)
	}
	return path, nil
}
