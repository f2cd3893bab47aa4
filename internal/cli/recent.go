package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/galligan/pickme/internal/indexer"
)

var (
	recentWindow string
	recentLimit  int
)

var recentCmd = &cobra.Command{
	Use:   "recent [root]",
	Short: "List files changed within a time window",
	Long: `List files under a root changed within a time window such as 30m,
24h, 1d, or 2w. Backs the session-start hook's "what changed since last
session" view.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecent,
}

func init() {
	recentCmd.Flags().StringVar(&recentWindow, "within", "24h", "look-back window (30m, 24h, 1d, 2w)")
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 0, "maximum results (default 100)")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	root := ""
	if len(args) == 1 {
		root = args[0]
	} else if root, err = os.Getwd(); err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	paths, err := indexer.RecentFiles(root, recentWindow, recentLimit, cfg.Index.Exclude.Patterns)
	if err != nil {
		return fmt.Errorf("recent files: %w", err)
	}

	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}
