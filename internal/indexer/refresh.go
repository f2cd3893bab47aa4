package indexer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/galligan/pickme/internal/config"
	"github.com/galligan/pickme/internal/storage"
)

// Refresh iterates cfg.Index.Roots in declaration order. For each root it
// looks up the watched-roots bookkeeping row, resolves the effective
// max_depth (per-root override else config default), runs IndexDirectory
// in incremental mode when a prior last_indexed_ms exists, prunes
// externally-deleted files, and updates the watched-roots row with the
// new timestamp and the count of files actually indexed this pass. Each
// result carries counts plus the elapsed time of its root's pass in
// Stats.Duration. Per-root errors are collected, never abort the whole
// refresh.
func Refresh(db *sql.DB, cfg *config.Config, now time.Time) ([]RefreshResult, error) {
	results := make([]RefreshResult, 0, len(cfg.Index.Roots))

	for _, root := range cfg.Index.Roots {
		result := RefreshResult{Root: root}
		rootStart := time.Now()

		wr, err := storage.GetWatchedRoot(db, root)
		if err != nil {
			result.ErrMsg = err.Error()
			results = append(results, result)
			continue
		}

		maxDepth := cfg.DepthForRoot(root)
		opts := Options{
			MaxDepth:          maxDepth,
			IncludeHidden:     cfg.Index.Include.Hidden,
			IncludeGitignored: !cfg.Index.Exclude.GitignoredFiles,
			Exclude:           cfg.Index.Exclude.Patterns,
			Disabled:          cfg.Index.Disabled,
			MaxFiles:          cfg.Index.Limits.MaxFilesPerRoot,
		}
		if wr != nil && wr.LastIndexedMs.Valid {
			opts.Incremental = true
			opts.LastIndexedMs = wr.LastIndexedMs.Int64
		}

		stats, err := IndexDirectory(db, root, cfg.Index.Roots, opts)
		if err != nil {
			result.ErrMsg = fmt.Errorf("index %s: %w", root, err).Error()
			results = append(results, result)
			continue
		}

		pruned, err := Prune(db, root)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("prune %s: %w", root, err))
		}
		_ = pruned

		stats.Duration = time.Since(rootStart)
		result.Stats = stats

		if err := storage.UpsertWatchedRoot(db, storage.WatchedRoot{
			Root:          root,
			MaxDepth:      maxDepth,
			LastIndexedMs: sql.NullInt64{Int64: now.UnixMilli(), Valid: true},
			FileCount:     sql.NullInt64{Int64: int64(stats.FilesIndexed), Valid: true},
		}); err != nil {
			result.ErrMsg = fmt.Errorf("update watched root %s: %w", root, err).Error()
		}

		results = append(results, result)
	}

	return results, nil
}
