// Package config provides configuration file parsing for autotrans.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Dir returns the autotrans config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/autotrans if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "autotrans"), nil
}

// DefaultPath returns the location of config.toml inside Dir.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Config holds defaults for the mirror locations and outputs. Command-line
// arguments override every field.
type Config struct {
	Baseline     string `toml:"baseline"`
	Unstable     string `toml:"unstable"`
	Experimental string `toml:"experimental"`
	Dest         string `toml:"dest"`
	DB           string `toml:"db"`
}

// Load reads the TOML file at path. A missing file yields an empty config
// without an error; unknown keys are rejected so typos do not go unnoticed.
// A leading ~/ in any path is expanded to the home directory.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	for _, field := range []*string{&cfg.Baseline, &cfg.Unstable, &cfg.Experimental, &cfg.Dest, &cfg.DB} {
		expanded, err := expandHome(*field)
		if err != nil {
			return nil, err
		}
		*field = expanded
	}

	return cfg, nil
}

func expandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, rest), nil
}
