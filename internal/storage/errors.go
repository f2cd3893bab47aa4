package storage

import (
	"errors"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// DatabaseError wraps a generic SQLite failure: open, query, transaction,
// lock, or corruption errors.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("database error: %v", e.Err)
	}
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// FtsSyntaxError indicates a malformed FTS5 query string reached SQLite.
// Since EscapeFTSQuery sanitizes every query before it is forwarded, this
// should be unreachable in practice; it is caught and classified anyway.
type FtsSyntaxError struct {
	Query string
	Err   error
}

func (e *FtsSyntaxError) Error() string {
	return fmt.Sprintf("fts syntax error in query %q: %v", e.Query, e.Err)
}

func (e *FtsSyntaxError) Unwrap() error { return e.Err }

// SchemaError indicates the on-disk schema is missing, incompatible, or
// otherwise not usable by this build of the core.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string { return "schema error: " + e.Message }

// WrapError classifies a raw SQLite/driver error into one of DatabaseError,
// FtsSyntaxError, or SchemaError by inspecting the error text.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var dbErr *DatabaseError
	var ftsErr *FtsSyntaxError
	var schemaErr *SchemaError
	if errors.As(err, &dbErr) || errors.As(err, &ftsErr) || errors.As(err, &schemaErr) {
		return err
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "fts5: syntax error") || strings.Contains(msg, "malformed match") {
		return &FtsSyntaxError{Err: err}
	}
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column") {
		return &SchemaError{Message: err.Error()}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return &DatabaseError{Err: err}
	}

	return &DatabaseError{Err: err}
}
