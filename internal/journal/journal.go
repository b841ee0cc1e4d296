// Package journal records run history for recovery targets.
//
// The journal is bookkeeping, not checkpoint state: the ledger alone
// decides what gets skipped on resume. Journal rows answer "what ran
// against this target, when, and how did it end", and carry content
// fingerprints that expose the same-name/different-content ledger
// hazard to the history command.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is stamped into user_version. Version 1 is the
// runs + outcomes layout; bumps come with a step in migrate.
const currentSchemaVersion = 1

// Journal is the durable run history, one SQLite database per ledger
// directory. A single connection serves reads and writes: journal
// traffic is a handful of rows per run, never worth a pool.
type Journal struct {
	db *sql.DB
}

// Open opens the journal at path, creating file and schema on first
// use. Safe to call on an existing journal; pragmas and the version
// stamp are reapplied, existing rows are not touched.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	j := &Journal{db: db}
	if err := j.configure(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// configure applies pragmas, the embedded schema, and the version
// stamp. WAL keeps history listings readable while a run writes;
// NORMAL sync is plenty for bookkeeping (the ledger carries the real
// durability burden); the busy timeout covers a run and a history
// command sharing the file.
func (j *Journal) configure() error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := j.db.Exec(pragma); err != nil {
			return fmt.Errorf("configure journal (%s): %w", pragma, err)
		}
	}
	if _, err := j.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply journal schema: %w", err)
	}
	return j.migrate()
}

// migrate brings an existing database up to currentSchemaVersion. A
// database stamped by a newer build is refused rather than guessed at.
func (j *Journal) migrate() error {
	var version int
	if err := j.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read journal schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	// Version 1 is established by schema.sql itself; the first
	// incremental migration lands here when version 2 exists.

	if _, err := j.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("stamp journal schema version: %w", err)
	}
	return nil
}

// verifyPragma reports whether a pragma reads back as expected. Test hook.
func (j *Journal) verifyPragma(name, expected string) error {
	var value string
	if err := j.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query pragma %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// count is a test convenience for row counts.
func (j *Journal) count(ctx context.Context, table string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}
