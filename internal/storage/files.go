package storage

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// FileEntry is one row of the files table.
type FileEntry struct {
	Path          string
	Filename      string
	DirComponents string
	Root          string
	RelativePath  string
	MtimeMs       int64
}

// UpsertBatchSize is the batch size batched upsert/delete statements
// commit at.
const UpsertBatchSize = 100

// UpsertFiles inserts or updates file entries in batches of UpsertBatchSize,
// each batch in its own transaction with a prepared
// INSERT ... ON CONFLICT(path) DO UPDATE statement.
func UpsertFiles(db *sql.DB, entries []FileEntry) error {
	for start := 0; start < len(entries); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := upsertBatch(db, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func upsertBatch(db *sql.DB, batch []FileEntry) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return WrapError(fmt.Errorf("begin upsert transaction: %w", err))
	}
	defer tx.Rollback()

	sqlStr, _, err := sq.Insert("files").
		Columns("path", "filename", "dir_components", "root", "relative_path", "mtime_ms").
		Values("", "", "", "", "", 0).
		Suffix(`ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			dir_components = excluded.dir_components,
			root = excluded.root,
			relative_path = excluded.relative_path,
			mtime_ms = excluded.mtime_ms`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert SQL: %w", err)
	}

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return WrapError(fmt.Errorf("prepare upsert statement: %w", err))
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(e.Path, e.Filename, e.DirComponents, e.Root, e.RelativePath, e.MtimeMs); err != nil {
			return WrapError(fmt.Errorf("upsert file %s: %w", e.Path, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return WrapError(fmt.Errorf("commit upsert transaction: %w", err))
	}
	return nil
}

// DeleteFiles removes the given paths from the files table in a single
// transaction with a prepared statement. Triggers and the frecency table's
// ON DELETE CASCADE clean up the FTS shadow row and any frecency record.
func DeleteFiles(db *sql.DB, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return WrapError(fmt.Errorf("begin delete transaction: %w", err))
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`DELETE FROM files WHERE path = ?`)
	if err != nil {
		return WrapError(fmt.Errorf("prepare delete statement: %w", err))
	}
	defer stmt.Close()

	for _, p := range paths {
		if _, err := stmt.Exec(p); err != nil {
			return WrapError(fmt.Errorf("delete file %s: %w", p, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return WrapError(fmt.Errorf("commit delete transaction: %w", err))
	}
	return nil
}

// PruneDeleted deletes any file entry under root whose path is not present
// in existingPaths. It loads existingPaths into a temporary indexed table
// rather than building a giant `NOT IN (...)` list, so it stays linear even
// for 100,000+ entries.
func PruneDeleted(db *sql.DB, root string, existingPaths []string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, WrapError(fmt.Errorf("begin prune transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS prune_existing (path TEXT PRIMARY KEY)`); err != nil {
		return 0, WrapError(fmt.Errorf("create temp prune table: %w", err))
	}
	defer tx.Exec(`DROP TABLE IF EXISTS prune_existing`)

	if _, err := tx.Exec(`DELETE FROM prune_existing`); err != nil {
		return 0, WrapError(fmt.Errorf("clear temp prune table: %w", err))
	}

	insertStmt, err := tx.Prepare(`INSERT OR IGNORE INTO prune_existing(path) VALUES (?)`)
	if err != nil {
		return 0, WrapError(fmt.Errorf("prepare temp insert: %w", err))
	}
	for _, p := range existingPaths {
		if _, err := insertStmt.Exec(p); err != nil {
			insertStmt.Close()
			return 0, WrapError(fmt.Errorf("populate temp prune table: %w", err))
		}
	}
	insertStmt.Close()

	res, err := tx.Exec(`
		DELETE FROM files
		WHERE root = ?
		  AND path NOT IN (SELECT path FROM prune_existing)
	`, root)
	if err != nil {
		return 0, WrapError(fmt.Errorf("delete pruned files: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return 0, WrapError(fmt.Errorf("commit prune transaction: %w", err))
	}

	return res.RowsAffected()
}

// ListPathsForRoot returns every indexed path under root, used by the
// indexer's opportunistic prune pass to check for external deletions.
func ListPathsForRoot(db *sql.DB, root string) ([]string, error) {
	rows, err := sq.Select("path").From("files").Where(sq.Eq{"root": root}).RunWith(db).Query()
	if err != nil {
		return nil, WrapError(fmt.Errorf("list paths for root %s: %w", root, err))
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, WrapError(fmt.Errorf("scan path: %w", err))
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DirComponents joins a relative path's directory segments with spaces, the
// form the FTS5 tokenizer indexes alongside filename and relative_path.
func DirComponents(relativePath string) string {
	dir := relativePath
	if idx := strings.LastIndexByte(dir, '/'); idx >= 0 {
		dir = dir[:idx]
	} else {
		dir = ""
	}
	return strings.ReplaceAll(dir, "/", " ")
}
