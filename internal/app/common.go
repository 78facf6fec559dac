package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/blackwell-systems/autotrans/internal/analyzer"
	"github.com/blackwell-systems/autotrans/internal/scanner"
	"github.com/blackwell-systems/autotrans/internal/store"
	"github.com/blackwell-systems/autotrans/internal/tracker"
)

// resolveSuites takes BASELINE UNSTABLE EXPERIMENTAL [DEST] from args and
// fills what is missing from the config file.
func resolveSuites(args []string) (scanner.Paths, string, error) {
	values := []string{cfg.Baseline, cfg.Unstable, cfg.Experimental, cfg.Dest}
	for i, arg := range args {
		if i < len(values) {
			values[i] = arg
		}
	}

	paths := scanner.Paths{Baseline: values[0], Unstable: values[1], Experimental: values[2]}
	var missing []string
	for _, p := range []struct{ name, value string }{
		{"baseline", paths.Baseline},
		{"unstable", paths.Unstable},
		{"experimental", paths.Experimental},
	} {
		if p.value == "" {
			missing = append(missing, p.name)
		}
	}
	if len(missing) > 0 {
		return scanner.Paths{}, "", fmt.Errorf("missing suite paths: %v (pass them as arguments or set them in the config file)", missing)
	}

	return paths, values[3], nil
}

// loadTracked lists the transitions tracked under dest. Without a
// destination nothing is tracked.
func loadTracked(dest string) (analyzer.Tracked, error) {
	if dest == "" {
		return analyzer.NewTracked(), nil
	}
	tracked, err := tracker.FindExisting(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracked transitions: %w", err)
	}
	return tracked, nil
}

// openHistory opens the history database, creating its schema if needed.
func openHistory() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, err
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return st, nil
}

// openHistoryReadOnly opens an existing history database without creating
// a schema. A missing file or schema reports store.ErrNotInitialized.
func openHistoryReadOnly() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, store.ErrNotInitialized)
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

func isMissingHistory(err error) bool {
	return errors.Is(err, store.ErrNotInitialized) || errors.Is(err, store.ErrNotFound)
}
