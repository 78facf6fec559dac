package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/autotrans/internal/config"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	// cfg is loaded before every command runs.
	cfg = &config.Config{}

	// RootCmd is the root command for autotrans
	RootCmd = &cobra.Command{
		Use:   "autotrans",
		Short: "Propose library transition trackers from Debian mirror snapshots",
		Long: `autotrans compares a baseline suite (usually testing) with unstable and
experimental and proposes a transition tracker for every source package whose
set of binary packages changes in a way that breaks other packages.

Proposals are written as .ben files under <dest>/<stage>/, where stage is one of:
  • ongoing   the change is already in unstable
  • planned   the change is only in experimental
  • finished  the baseline still carries binaries the source no longer builds

Transitions already tracked under a stage directory are not proposed again.

Examples:
  # Preview proposals without writing anything
  autotrans run --dry-run dists/testing dists/unstable dists/experimental

  # Write trackers into a dashboard checkout
  autotrans run dists/testing dists/unstable dists/experimental ~/transitions/config

  # Find out why a source is (not) proposed
  autotrans explain libfoo dists/testing dists/unstable dists/experimental

  # Re-run whenever the mirror syncs
  autotrans watch dists/testing dists/unstable dists/experimental ~/transitions/config`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, logger))

			loaded, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path (default: ~/.autotrans/autotrans.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/autotrans/config.toml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.ExecuteContext(context.Background())
}

// loadConfig reads the --config file, or the default one when the flag is
// not set. Only an explicitly named file has to exist.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		def, err := config.DefaultPath()
		if err != nil {
			return &config.Config{}, nil
		}
		path = def
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	return config.Load(path)
}

// getDBPath returns the database path from the flag, the config file or
// the default location, in that order.
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg.DB != "" {
		return cfg.DB, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	// Create .autotrans directory if it doesn't exist
	dir := filepath.Join(home, ".autotrans")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create autotrans directory: %w", err)
	}

	return filepath.Join(dir, "autotrans.db"), nil
}
