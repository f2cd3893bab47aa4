package indexer

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/galligan/pickme/internal/storage"
)

// FlushBatchSize mirrors storage.UpsertBatchSize: the indexer flushes an
// in-memory batch through storage every time it fills.
const FlushBatchSize = storage.UpsertBatchSize

// Discover picks the fastest available strategy (an external `fd`-style
// finder when present, else a recursive walk), resolves symlinks against
// roots, and returns canonical absolute paths.
func Discover(root string, roots []string, opts Options) ([]string, error) {
	if opts.MaxDepth <= 0 {
		return nil, nil
	}

	var (
		paths []string
		err   error
	)
	if HasExternalFinder() {
		paths, err = fdDiscover(root, opts)
	} else {
		paths, err = walkDiscover(root, opts)
	}
	if err != nil {
		return nil, err
	}
	return resolveSymlinks(paths, roots), nil
}

// IndexDirectory discovers files under root, converts each into a
// FileEntry (lstat for mtime, skipping unchanged entries when opts
// .Incremental requires strict mtime_ms > last_indexed_ms), and flushes
// batches of FlushBatchSize through storage.UpsertFiles. It always
// flushes the tail batch, and never aborts on a single file's stat
// error — those are collected into Stats.Errors.
func IndexDirectory(db *sql.DB, root string, roots []string, opts Options) (Stats, error) {
	// Canonicalize the root so entry paths, relative paths, and the
	// containment check below all agree even when the root itself sits
	// behind a symlink.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	canonicalRoots := make([]string, 0, len(roots))
	for _, r := range roots {
		if resolved, err := filepath.EvalSymlinks(r); err == nil {
			r = resolved
		}
		canonicalRoots = append(canonicalRoots, r)
	}

	paths, err := Discover(root, canonicalRoots, opts)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	batch := make([]storage.FileEntry, 0, FlushBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := storage.UpsertFiles(db, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil {
			stats.Errors = append(stats.Errors, err)
			continue
		}

		mtimeMs := info.ModTime().UnixMilli()
		if opts.Incremental && mtimeMs <= opts.LastIndexedMs {
			stats.FilesSkipped++
			continue
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			stats.Errors = append(stats.Errors, err)
			continue
		}
		relPath = filepath.ToSlash(relPath)

		entry := storage.FileEntry{
			Path:          path,
			Filename:      filepath.Base(path),
			DirComponents: storage.DirComponents(relPath),
			Root:          root,
			RelativePath:  relPath,
			MtimeMs:       mtimeMs,
		}
		batch = append(batch, entry)
		stats.FilesIndexed++

		if len(batch) >= FlushBatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}
