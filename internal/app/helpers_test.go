package app

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/autotrans/internal/archive/archivetest"
	"github.com/blackwell-systems/autotrans/internal/config"
	"github.com/blackwell-systems/autotrans/internal/scanner"
)

// writeLibfooMirror lays out three suites where libfoo moves from libfoo1 to
// libfoo2 in unstable and bar depends on it. Experimental carries a libfoo
// upload that keeps the baseline binary, so only the ongoing stage sees a
// transition.
func writeLibfooMirror(t *testing.T) scanner.Paths {
	t.Helper()
	dir := t.TempDir()

	baseline := archivetest.Write(t, dir, "testing", archivetest.Dist{
		Sources: []archivetest.Source{
			{Name: "libfoo", Version: "1.0-1", Binaries: []string{"libfoo1"}},
			{Name: "bar", Version: "1.0-1", Binaries: []string{"bar"}},
		},
		Binaries: []archivetest.Binary{
			{Name: "libfoo1", Version: "1.0-1", Source: "libfoo", Section: "libs"},
			{Name: "bar", Version: "1.0-1", Section: "utils", Depends: "libfoo1 (>= 1.0)"},
		},
		Compression: ".xz",
	})
	unstable := archivetest.Write(t, dir, "unstable", archivetest.Dist{
		Sources: []archivetest.Source{
			{Name: "libfoo", Version: "2.0-1", Binaries: []string{"libfoo2"}},
			{Name: "bar", Version: "1.0-1+b1", Binaries: []string{"bar"}},
		},
		Binaries: []archivetest.Binary{
			{Name: "libfoo2", Version: "2.0-1", Source: "libfoo", Section: "libs"},
			{Name: "bar", Version: "1.0-1+b1", Section: "utils", Depends: "libfoo2 (>= 2.0)"},
		},
		Compression: ".gz",
	})
	experimental := archivetest.Write(t, dir, "experimental", archivetest.Dist{
		Sources: []archivetest.Source{
			{Name: "libfoo", Version: "1.5-1", Binaries: []string{"libfoo1"}},
		},
		Binaries: []archivetest.Binary{
			{Name: "libfoo1", Version: "1.5-1", Source: "libfoo", Section: "libs"},
		},
	})

	return scanner.Paths{Baseline: baseline, Unstable: unstable, Experimental: experimental}
}

// resetGlobals restores package flag variables and every command's flags so
// commands can be executed repeatedly in one test binary.
func resetGlobals(t *testing.T) {
	t.Helper()

	reset := func() {
		dbPath, configPath, verbose = "", "", false
		cfg = &config.Config{}
		runDryRun, runFormat, runNoHistory = false, "table", false
		explainDest = ""
		historyRunID, historyLimit = "", 20

		var visit func(cmd *cobra.Command)
		visit = func(cmd *cobra.Command) {
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
			for _, sub := range cmd.Commands() {
				visit(sub)
			}
		}
		visit(RootCmd)
	}

	reset()
	t.Cleanup(reset)
}

// executeCommand runs the root command with args and an isolated config dir
// and history database, returning stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// isolate points the config directory and the default history location at
// temporary directories and returns the history database path.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	return filepath.Join(t.TempDir(), "history.db")
}

func testContext() context.Context {
	return withLogger(context.Background(), log.New(io.Discard))
}
