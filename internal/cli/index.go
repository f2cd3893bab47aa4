package cli

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/galligan/pickme/internal/git"
	"github.com/galligan/pickme/internal/indexer"
	"github.com/galligan/pickme/internal/storage"
)

var (
	indexQuiet      bool
	indexNoFrecency bool
)

var indexCmd = &cobra.Command{
	Use:   "index [roots...]",
	Short: "Index the configured roots",
	Long: `Index the configured roots (or the given roots) into the search
database, then rebuild git frecency data for each root that is a git
repository.

Meant to be run from a session-start hook; a running daemon notices the
database change and invalidates its caches on its own.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexQuiet, "quiet", "q", false, "suppress progress output")
	indexCmd.Flags().BoolVar(&indexNoFrecency, "no-frecency", false, "skip the git frecency rebuild")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(args) > 0 {
		cfg.Index.Roots = args
	}
	if len(cfg.Index.Roots) == 0 {
		return fmt.Errorf("no roots configured; pass roots or set index.roots in config")
	}

	db, err := storage.Open(dbPath(), storage.OpenOptions{})
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	reporter := NewIndexProgressReporter(indexQuiet, len(cfg.Index.Roots))
	now := time.Now()

	// Refresh one root at a time so the bar advances per root.
	for _, root := range cfg.Index.Roots {
		rootCfg := *cfg
		rootCfg.Index.Roots = []string{root}

		results, err := indexer.Refresh(db, &rootCfg, now)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", root, err)
		}
		for _, result := range results {
			reporter.OnRootDone(result)
		}

		if !indexNoFrecency {
			if err := rebuildFrecency(db, root, now); err != nil && verbose {
				fmt.Printf("  frecency %s: %v\n", root, err)
			}
		}
	}

	reporter.OnComplete()
	return nil
}

// rebuildFrecency derives frecency records from git history and working
// tree status. Best-effort: a root that is not a repository contributes
// nothing and no error.
func rebuildFrecency(db *sql.DB, root string, now time.Time) error {
	records, err := git.BuildFrecency(root, now)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	return storage.UpsertFrecency(db, records)
}
