package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenOptions controls how Open configures the connection.
type OpenOptions struct {
	// ReadOnly opens the database for read access only. A read-only client
	// (the daemon, reading a database the indexer process writes to)
	// still applies the same pragmas; the WAL sidecar is treated purely as
	// a freshness signal by the caller, not specially handled here.
	ReadOnly bool
}

// Open opens (and, unless ReadOnly, initializes) the SQLite database at
// path with its standing pragmas: WAL journaling,
// synchronous=NORMAL, foreign keys on, temp_store in memory, a 64MiB page
// cache, a 256MiB mmap region, and a 5s busy timeout.
func Open(path string, opts OpenOptions) (*sql.DB, error) {
	dsn := path
	if opts.ReadOnly {
		dsn += "?mode=ro"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = -65536",   // 64 MiB, negative = KiB
		"PRAGMA mmap_size = 268435456", // 256 MiB
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, WrapError(fmt.Errorf("apply pragma %q: %w", p, err))
		}
	}

	if opts.ReadOnly {
		return db, nil
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	} else if version != SchemaVersion {
		db.Close()
		return nil, &SchemaError{Message: fmt.Sprintf("unsupported schema version %q (want %q)", version, SchemaVersion)}
	}

	return db, nil
}
