package storage

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// FrecencyRecord is the zero-or-one-per-file frecency row.
type FrecencyRecord struct {
	Path           string
	GitRecency     float64
	GitFrequency   int
	GitStatusBoost float64
	LastSeenMs     int64
}

// UpsertFrecency writes or updates frecency records for every path the
// frecency builder saw in this run. Pre-existing records for paths not
// present in records are left untouched.
func UpsertFrecency(db *sql.DB, records []FrecencyRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return WrapError(fmt.Errorf("begin frecency transaction: %w", err))
	}
	defer tx.Rollback()

	sqlStr, _, err := sq.Insert("frecency").
		Columns("path", "git_recency", "git_frequency", "git_status_boost", "last_seen_ms").
		Values("", 0.0, 0, 0.0, 0).
		Suffix(`ON CONFLICT(path) DO UPDATE SET
			git_recency = excluded.git_recency,
			git_frequency = excluded.git_frequency,
			git_status_boost = excluded.git_status_boost,
			last_seen_ms = excluded.last_seen_ms`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build frecency upsert SQL: %w", err)
	}

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return WrapError(fmt.Errorf("prepare frecency upsert: %w", err))
	}
	defer stmt.Close()

	for _, r := range records {
		// A frecency record requires a matching file entry (FK constraint);
		// silently skip paths that have not been indexed yet.
		if _, err := stmt.Exec(r.Path, r.GitRecency, r.GitFrequency, r.GitStatusBoost, r.LastSeenMs); err != nil {
			if isForeignKeyViolation(err) {
				continue
			}
			return WrapError(fmt.Errorf("upsert frecency for %s: %w", r.Path, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return WrapError(fmt.Errorf("commit frecency transaction: %w", err))
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
