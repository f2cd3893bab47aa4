package storage

import (
	"database/sql"
	"fmt"
)

// Weights are the ranking weights of the composite score.
type Weights struct {
	Recency   float64
	Frequency float64
	Status    float64
}

// DefaultWeights returns the built-in ranking weights.
func DefaultWeights() Weights {
	return Weights{Recency: 1.0, Frequency: 0.5, Status: 5.0}
}

// Candidate is one ranked row out of the query engine.
type Candidate struct {
	Path  string
	Root  string
	Score float64
}

// SearchFTS runs the FTS join against files, left-joins frecency, computes
// the composite score in SQL, and returns candidates ordered descending by
// score with ties broken ascending by path.
//
// escapedQuery must already be the output of EscapeFTSQuery; an empty
// escapedQuery short-circuits to an empty result set without touching
// SQLite.
func SearchFTS(db *sql.DB, escapedQuery string, pathPrefixes []string, w Weights, limit int) ([]Candidate, error) {
	if escapedQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT f.path, f.root,
			bm25(files_fts) * -1.0
				+ ? * COALESCE(fr.git_recency, 0)
				+ ? * COALESCE(LN(1 + fr.git_frequency) / LN(2), 0)
				+ ? * COALESCE(fr.git_status_boost, 0) AS score
		FROM files_fts
		JOIN files f ON f.rowid = files_fts.rowid
		LEFT JOIN frecency fr ON fr.path = f.path
		WHERE files_fts MATCH ?
	`
	args := []any{w.Recency, w.Frequency, w.Status, escapedQuery}

	for _, prefix := range pathPrefixes {
		query += " AND f.path LIKE ? "
		args = append(args, prefix+"%")
	}

	query += " ORDER BY score DESC, f.path ASC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, WrapError(fmt.Errorf("execute search query: %w", err))
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// SearchExtension lists files whose path ends with the given extension
// (e.g. ".md"), scoped to project root if non-empty, ordered by the same
// composite score. Used for `@*.ext` prefixes with no remaining search
// text.
func SearchExtension(db *sql.DB, extension string, projectRoot string, w Weights, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT f.path, f.root,
			? * COALESCE(fr.git_recency, 0)
				+ ? * COALESCE(LN(1 + fr.git_frequency) / LN(2), 0)
				+ ? * COALESCE(fr.git_status_boost, 0) AS score
		FROM files f
		LEFT JOIN frecency fr ON fr.path = f.path
		WHERE f.path LIKE ?
	`
	args := []any{w.Recency, w.Frequency, w.Status, "%" + extension}

	if projectRoot != "" {
		query += " AND f.path LIKE ? "
		args = append(args, projectRoot+"%")
	}

	query += " ORDER BY score DESC, f.path ASC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, WrapError(fmt.Errorf("execute extension query: %w", err))
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// ListCandidates lists files scoped to the given path prefixes (all files
// when none are given), ordered by the frecency portion of the composite
// score. Used for prefix-only queries — a folder or pattern-list prefix
// with no remaining search text — where there is nothing for FTS to match.
func ListCandidates(db *sql.DB, pathPrefixes []string, w Weights, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT f.path, f.root,
			? * COALESCE(fr.git_recency, 0)
				+ ? * COALESCE(LN(1 + fr.git_frequency) / LN(2), 0)
				+ ? * COALESCE(fr.git_status_boost, 0) AS score
		FROM files f
		LEFT JOIN frecency fr ON fr.path = f.path
	`
	args := []any{w.Recency, w.Frequency, w.Status}

	for i, prefix := range pathPrefixes {
		if i == 0 {
			query += " WHERE f.path LIKE ? "
		} else {
			query += " AND f.path LIKE ? "
		}
		args = append(args, prefix+"%")
	}

	query += " ORDER BY score DESC, f.path ASC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, WrapError(fmt.Errorf("execute list query: %w", err))
	}
	defer rows.Close()

	return scanCandidates(rows)
}

func scanCandidates(rows *sql.Rows) ([]Candidate, error) {
	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.Path, &c.Root, &c.Score); err != nil {
			return nil, WrapError(fmt.Errorf("scan candidate row: %w", err))
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
