// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

The schema is a single table:

  - merit_box: the shared counter (id, total_merit, last_updated,
    created_at)

merit_box holds exactly one logical row, created lazily on first access
by merit.Store.GetOrCreate. A unique singleton column makes racing
first-access inserts conflict instead of duplicating the row, and a
CHECK constraint keeps total_merit non-negative at the storage layer as
well as in the service layer.

# Dialects

The DDL runs unchanged on both supported backends (modernc.org/sqlite
and lib/pq). Timestamps are always written by the application from an
injected clock, so no database-side NOW() defaults are used.
*/
package db
