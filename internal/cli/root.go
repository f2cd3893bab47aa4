// Package cli implements the pickme command tree: the daemon lifecycle
// commands, the one-shot indexer, and the search/health clients.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/galligan/pickme/internal/config"
	"github.com/galligan/pickme/internal/daemon"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pickme",
	Short: "pickme - frecency-ranked file search for @-completion",
	Long: `pickme indexes files under configured roots and answers interactive
filename queries ranked by text relevance and git-derived frecency.

A long-running daemon serves queries over a Unix socket; the indexer runs
as a short-lived process, typically from a session-start hook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and returns the process exit code: 0 on
// success, 1 on operational errors, 2 on usage errors.
func Execute() int {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if isUsageError(err) {
		fmt.Fprintln(os.Stderr, cmd.UsageString())
		return 2
	}
	return 1
}

// isUsageError distinguishes bad invocations (unknown flags/commands,
// wrong arg counts) from operational failures. Cobra leaves no marker on
// its own parse errors, so match on their message shapes.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"invalid argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file; config.toml in its directory is read (default $XDG_CONFIG_HOME/pickme/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig resolves the config file from the --config flag, then the
// PICKME_CONFIG_PATH override, then the default XDG location. Only the
// directory of a given path is used: the loader reads config.toml from it.
func loadConfig() (*config.Config, error) {
	switch {
	case cfgFile != "":
		return config.NewLoader(filepath.Dir(cfgFile)).Load()
	case os.Getenv("PICKME_CONFIG_PATH") != "":
		return config.NewLoader(filepath.Dir(os.Getenv("PICKME_CONFIG_PATH"))).Load()
	default:
		return config.LoadConfig()
	}
}

// dbPath resolves the index database location, honoring the
// PICKME_DB_PATH override used when the indexer runs as a subprocess.
func dbPath() string {
	if p := os.Getenv("PICKME_DB_PATH"); p != "" {
		return p
	}
	return daemon.DefaultDBPath()
}

// socketPath resolves the daemon socket, honoring the config override.
func socketPath(cfg *config.Config) string {
	if cfg != nil && cfg.Daemon.SocketPath != "" {
		return cfg.Daemon.SocketPath
	}
	return daemon.DefaultSocketPath()
}
