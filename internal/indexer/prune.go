package indexer

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/galligan/pickme/internal/storage"
)

// Prune lists every path stored for root, checks each for existence, and
// batch-deletes the ones no longer on disk. Called opportunistically and
// at the end of every refresh.
func Prune(db *sql.DB, root string) (int, error) {
	// File rows key on the canonical root.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	paths, err := storage.ListPathsForRoot(db, root)
	if err != nil {
		return 0, err
	}

	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Lstat(p); err == nil {
			existing = append(existing, p)
		}
	}

	removed, err := storage.PruneDeleted(db, root, existing)
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}
