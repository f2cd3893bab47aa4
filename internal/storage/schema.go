package storage

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the files table, its FTS5 shadow, the frecency and
// watched-roots tables, and the triggers that keep the FTS table in
// lockstep with file entries. Must be called once per fresh database file
// with PRAGMA foreign_keys already enabled on the connection.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"frecency", createFrecencyTable},
		{"watched_roots", createWatchedRootsTable},
		{"schema_meta", createSchemaMetaTable},
	}

	for _, t := range tables {
		if _, err := tx.Exec(t.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("create index %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO schema_meta (key, value) VALUES ('schema_version', ?)`, SchemaVersion); err != nil {
		return fmt.Errorf("bootstrap schema_meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}

	// FTS5 virtual tables and their triggers must be created outside the
	// transaction that created the table they shadow.
	if _, err := db.Exec(createFilesFTSTable); err != nil {
		return fmt.Errorf("create files_fts table: %w", err)
	}
	if err := createFTSTriggers(db); err != nil {
		return fmt.Errorf("create FTS triggers: %w", err)
	}

	return nil
}

// SchemaVersion is the current on-disk schema revision. Bump this and add a
// migration path in a future change; the core itself only gates on it.
const SchemaVersion = "1"

// GetSchemaVersion returns the schema_version row, or "0" for a database
// that has not been initialized yet.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_meta'`).Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("check schema_meta existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow(`SELECT value FROM schema_meta WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("query schema version: %w", err)
	}
	return version, nil
}

const createFilesTable = `
CREATE TABLE files (
    path          TEXT PRIMARY KEY,  -- absolute, canonical (symlinks resolved)
    filename      TEXT NOT NULL,     -- basename
    dir_components TEXT NOT NULL,    -- space-joined path segments, for FTS tokenization
    root          TEXT NOT NULL,     -- the indexed root this file belongs to
    relative_path TEXT NOT NULL,     -- path relative to root, for display
    mtime_ms      INTEGER NOT NULL
)
`

const createFilesFTSTable = `
CREATE VIRTUAL TABLE files_fts USING fts5(
    filename,
    dir_components,
    relative_path,
    content = 'files',
    content_rowid = 'rowid'
)
`

const createFrecencyTable = `
CREATE TABLE frecency (
    path             TEXT PRIMARY KEY,
    git_recency      REAL NOT NULL DEFAULT 0,
    git_frequency    INTEGER NOT NULL DEFAULT 0,
    git_status_boost REAL NOT NULL DEFAULT 0,
    last_seen_ms     INTEGER NOT NULL,
    FOREIGN KEY (path) REFERENCES files(path) ON DELETE CASCADE
)
`

const createWatchedRootsTable = `
CREATE TABLE watched_roots (
    root            TEXT PRIMARY KEY,
    max_depth       INTEGER NOT NULL,
    last_indexed_ms INTEGER,
    file_count      INTEGER
)
`

const createSchemaMetaTable = `
CREATE TABLE schema_meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)
`

func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_files_root ON files(root)",
		"CREATE INDEX idx_frecency_path ON frecency(path)",
	}
}

// createFTSTriggers keeps files_fts in lockstep with files by rowid, as
// required by the external-content FTS5 table above.
func createFTSTriggers(db *sql.DB) error {
	triggers := []string{
		`CREATE TRIGGER files_ai AFTER INSERT ON files BEGIN
			INSERT INTO files_fts(rowid, filename, dir_components, relative_path)
			VALUES (new.rowid, new.filename, new.dir_components, new.relative_path);
		END`,
		`CREATE TRIGGER files_ad AFTER DELETE ON files BEGIN
			INSERT INTO files_fts(files_fts, rowid, filename, dir_components, relative_path)
			VALUES ('delete', old.rowid, old.filename, old.dir_components, old.relative_path);
		END`,
		`CREATE TRIGGER files_au AFTER UPDATE ON files BEGIN
			INSERT INTO files_fts(files_fts, rowid, filename, dir_components, relative_path)
			VALUES ('delete', old.rowid, old.filename, old.dir_components, old.relative_path);
			INSERT INTO files_fts(rowid, filename, dir_components, relative_path)
			VALUES (new.rowid, new.filename, new.dir_components, new.relative_path);
		END`,
	}

	for i, trigger := range triggers {
		if _, err := db.Exec(trigger); err != nil {
			return fmt.Errorf("create trigger %d: %w", i+1, err)
		}
	}
	return nil
}
