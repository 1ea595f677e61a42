// Package sqltest provides an in-memory SQLite fixture database for
// executing rendered queries in tests.
//
// The fixture carries a small people/events dataset. Tests render a query
// with the "?" placeholder, execute it against the fixture, and check the
// rows that come back, which verifies both the SQL text and the
// placeholder/value ordering contract against a real engine.
package sqltest

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Open opens a fresh in-memory SQLite database loaded with the fixture
// schema and seed rows. Every call returns an independent database; the
// caller owns closing it.
func Open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open fixture database: %w", err)
	}

	// An in-memory database exists per connection. Pin the pool to one
	// connection so every statement sees the same database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply fixture schema: %w", err)
	}
	return db, nil
}
