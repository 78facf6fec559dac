package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultWindow is how long a mirror must stay quiet before a run starts.
const DefaultWindow = 30 * time.Second

// ChangeFunc is called with the Release files changed since the last call.
type ChangeFunc func(ctx context.Context, paths []string) error

// Watcher triggers a callback when a distribution's Release file changes.
type Watcher struct {
	dirs     []string
	debounce *Debouncer
	onChange ChangeFunc
	logger   *log.Logger
	fs       *fsnotify.Watcher
}

// New creates a Watcher for the given distribution directories. A window of
// zero or less uses DefaultWindow; a nil logger uses log.Default().
func New(dirs []string, window time.Duration, onChange ChangeFunc, logger *log.Logger) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, errors.New("no directories to watch")
	}
	if onChange == nil {
		return nil, errors.New("change callback cannot be nil")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = log.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		dirs:     dirs,
		debounce: NewDebouncer(window),
		onChange: onChange,
		logger:   logger,
		fs:       fsw,
	}, nil
}

// IsReleaseFile reports whether path names a Release or InRelease file.
func IsReleaseFile(path string) bool {
	switch filepath.Base(path) {
	case "Release", "InRelease":
		return true
	}
	return false
}

// Run watches until ctx is done and returns nil then. A failing callback is
// logged and watching continues; only watcher setup errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	defer w.debounce.Stop()

	for _, dir := range w.dirs {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug("Watching distribution", "dir", dir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !IsReleaseFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("Release changed", "path", event.Name, "op", event.Op.String())
			w.debounce.Add(event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "err", err)

		case <-w.debounce.Ready():
			paths := w.debounce.Take()
			if len(paths) == 0 {
				continue
			}
			w.logger.Info("Mirror updated", "files", len(paths))
			if err := w.onChange(ctx, paths); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("Run failed", "err", err)
			}
		}
	}
}
