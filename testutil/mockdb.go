package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database for testing. The pool
// is pinned to one connection so every query sees the same database.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateLegacyExportsTable creates an exports table holding one row, as an
// older ledger would have left behind
func CreateLegacyExportsTable(t *testing.T, db *sql.DB) {
	t.Helper()
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS exports (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		path        TEXT NOT NULL,
		format      TEXT NOT NULL,
		after_unix  INTEGER NOT NULL DEFAULT 0,
		before_unix INTEGER NOT NULL DEFAULT 0,
		count       INTEGER NOT NULL DEFAULT 0,
		exported_at TEXT NOT NULL
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create exports table: %v", err)
	}

	insertSQL := `INSERT INTO exports (id, kind, path, format, after_unix, before_unix, count, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := db.Exec(insertSQL, "legacy-1", "month", "strava-month-2024-12.json", "json",
		1733000400, 1735678800, 12, "2024-12-31T21:00:00Z"); err != nil {
		t.Fatalf("Failed to insert export: %v", err)
	}
}
