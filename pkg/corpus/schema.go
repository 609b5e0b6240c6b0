package corpus

import (
	"database/sql"
	"fmt"
)

// SetupSchema initializes the corpus tables in the provided database.
// This function should be called once on a new database before any other
// operations are performed. It is idempotent and safe to call on an
// already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaSources = `
CREATE TABLE IF NOT EXISTS corpus_sources (
    source_id INTEGER PRIMARY KEY,
    corpus_name TEXT NOT NULL,
    source_name TEXT NOT NULL,
    content TEXT NOT NULL,
    added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (corpus_name, source_name)
);
`
		schemaRuns = `
CREATE TABLE IF NOT EXISTS generation_runs (
    run_id TEXT PRIMARY KEY,
    corpus_name TEXT NOT NULL,
    mode TEXT NOT NULL,
    chain_order INTEGER NOT NULL,
    target_length INTEGER NOT NULL,
    seed INTEGER,
    output TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and
	// the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaSources); err != nil {
		return fmt.Errorf("could not create sources schema: %w", err)
	}

	if _, err = tx.Exec(schemaRuns); err != nil {
		return fmt.Errorf("could not create runs schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
