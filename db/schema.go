// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL is dialect-neutral and runs unchanged on sqlite and postgres:
// timestamps are written by the application, never defaulted by the
// database.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Merit box: a single logical row holding the shared counter.
-- The unique singleton column makes concurrent first-access inserts
-- conflict instead of duplicating the row; created_at lets readers pick
-- the earliest row deterministically should duplicates ever exist anyway.
CREATE TABLE IF NOT EXISTS merit_box (
    id TEXT PRIMARY KEY,
    singleton INTEGER NOT NULL DEFAULT 1 UNIQUE CHECK (singleton = 1),
    total_merit INTEGER NOT NULL DEFAULT 0 CHECK (total_merit >= 0),
    last_updated TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`
