package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/galligan/pickme/internal/daemon"
)

var (
	searchCwd   string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the index through the daemon",
	Long: `Search the index through the daemon, starting one if none is
running. Prints one result per line: score, then path.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchCwd, "cwd", "", "project root to scope the search to (default: working directory)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cwd := searchCwd
	if cwd == "" {
		if cwd, err = os.Getwd(); err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sock := socketPath(cfg)
	if err := ensureDaemon(ctx, sock); err != nil {
		return err
	}

	client := daemon.NewClient(sock)
	resp, err := client.Search(ctx, args[0], cwd, searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("search: %s", resp.Error)
	}

	for _, r := range resp.Results {
		fmt.Printf("%8.2f  %s\n", r.Score, r.Path)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%d results in %.2fms (cached=%v)\n",
			len(resp.Results), resp.DurationMs, resp.Cached != nil && *resp.Cached)
	}
	return nil
}

// ensureDaemon auto-starts the daemon if its socket is not dialable.
func ensureDaemon(ctx context.Context, sock string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	dcfg, err := daemon.NewDaemonConfig("pickme", sock, []string{exe, "daemon", "start"}, 30*time.Second)
	if err != nil {
		return fmt.Errorf("daemon config: %w", err)
	}
	if err := daemon.EnsureDaemon(ctx, dcfg); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	return nil
}
