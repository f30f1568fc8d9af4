// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package merit persists the shared counter.

# Store

Store wraps *sql.DB and an injectable clock (jonboulle/clockwork):

	store := merit.NewStore(db, clockwork.NewRealClock())

Operations:

	rec, err := store.GetOrCreate()      // lazy singleton creation
	rec, err = store.Increment(rec.ID)   // atomic +1
	rec, err = store.Set(rec.ID, 100)    // absolute overwrite

# Atomicity

Increment is a single SQL statement

	UPDATE merit_box SET total_merit = total_merit + 1 ... RETURNING ...

so concurrent increments never lose updates: N completed calls move the
counter by exactly N. This is the one place in the system where a
read-modify-write race would be possible, and it is closed at the
storage layer rather than with an application lock.

# Singleton Semantics

GetOrCreate selects the earliest-created row and only inserts when none
exists. Racing first-access inserts collapse at the database (unique
singleton column + ON CONFLICT DO NOTHING), every reader converges on
the earliest row, and Count lets tests flag any duplicate as a defect.

# Errors

	ErrInvalidValue  // Set called with a negative value
	ErrNotFound      // mutation targeted a missing row

Everything else is a wrapped storage error, surfaced by handlers as 500.
*/
package merit
