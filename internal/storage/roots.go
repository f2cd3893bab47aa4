package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// WatchedRoot is the bookkeeping row for one indexed root.
type WatchedRoot struct {
	Root          string
	MaxDepth      int
	LastIndexedMs sql.NullInt64
	FileCount     sql.NullInt64
}

// GetWatchedRoot looks up a root's bookkeeping row. Returns (nil, nil) if
// the root has never been indexed.
func GetWatchedRoot(db *sql.DB, root string) (*WatchedRoot, error) {
	row := sq.Select("root", "max_depth", "last_indexed_ms", "file_count").
		From("watched_roots").
		Where(sq.Eq{"root": root}).
		RunWith(db).
		QueryRow()

	var wr WatchedRoot
	if err := row.Scan(&wr.Root, &wr.MaxDepth, &wr.LastIndexedMs, &wr.FileCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, WrapError(fmt.Errorf("get watched root %s: %w", root, err))
	}
	return &wr, nil
}

// UpsertWatchedRoot inserts the row on first index, updates it on every
// subsequent refresh.
func UpsertWatchedRoot(db *sql.DB, wr WatchedRoot) error {
	_, err := sq.Insert("watched_roots").
		Columns("root", "max_depth", "last_indexed_ms", "file_count").
		Values(wr.Root, wr.MaxDepth, wr.LastIndexedMs, wr.FileCount).
		Suffix(`ON CONFLICT(root) DO UPDATE SET
			max_depth = excluded.max_depth,
			last_indexed_ms = excluded.last_indexed_ms,
			file_count = excluded.file_count`).
		RunWith(db).
		Exec()
	if err != nil {
		return WrapError(fmt.Errorf("upsert watched root %s: %w", wr.Root, err))
	}
	return nil
}

// ListWatchedRoots returns all roots ever indexed, in no particular order.
func ListWatchedRoots(db *sql.DB) ([]WatchedRoot, error) {
	rows, err := sq.Select("root", "max_depth", "last_indexed_ms", "file_count").
		From("watched_roots").
		RunWith(db).
		Query()
	if err != nil {
		return nil, WrapError(fmt.Errorf("list watched roots: %w", err))
	}
	defer rows.Close()

	var out []WatchedRoot
	for rows.Next() {
		var wr WatchedRoot
		if err := rows.Scan(&wr.Root, &wr.MaxDepth, &wr.LastIndexedMs, &wr.FileCount); err != nil {
			return nil, WrapError(fmt.Errorf("scan watched root: %w", err))
		}
		out = append(out, wr)
	}
	return out, rows.Err()
}
