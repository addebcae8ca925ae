package internal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry records one successful export
type HistoryEntry struct {
	ID         string
	Kind       string
	Path       string
	Format     string
	AfterUnix  int64
	BeforeUnix int64
	Count      int
	ExportedAt time.Time
}

// NewHistoryEntry describes doc written to path in format
func NewHistoryEntry(doc Document, path, format string, exportedAt time.Time) HistoryEntry {
	entry := HistoryEntry{
		Kind:       doc.Kind(),
		Path:       path,
		Format:     format,
		Count:      doc.ActivityCount(),
		ExportedAt: exportedAt,
	}
	if w, ok := doc.(*WindowExport); ok {
		entry.AfterUnix = w.AfterUnix
		entry.BeforeUnix = w.BeforeUnix
	}
	return entry
}

// historyTimeLayout has a fixed width so stored timestamps sort as text
const historyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// History is the local ledger of exports
type History struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS exports (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	path        TEXT NOT NULL,
	format      TEXT NOT NULL,
	after_unix  INTEGER NOT NULL DEFAULT 0,
	before_unix INTEGER NOT NULL DEFAULT 0,
	count       INTEGER NOT NULL DEFAULT 0,
	exported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_exported_at ON exports (exported_at);`

// OpenHistory opens or creates the ledger at path
func OpenHistory(path string) (*History, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	h, err := NewHistory(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// OpenHistoryReadOnly opens an existing ledger without creating it
func OpenHistoryReadOnly(path string) (*History, error) {
	db, err := OpenDatabaseReadOnly(path)
	if err != nil {
		return nil, err
	}
	return &History{db: db}, nil
}

// NewHistory wraps db and ensures the schema exists
func NewHistory(db *sql.DB) (*History, error) {
	if _, err := db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &History{db: db}, nil
}

// Close closes the underlying database
func (h *History) Close() error {
	return h.db.Close()
}

// Record inserts entry, assigning an id when it has none
func (h *History) Record(ctx context.Context, entry HistoryEntry) (HistoryEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ExportedAt.IsZero() {
		entry.ExportedAt = time.Now()
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO exports (id, kind, path, format, after_unix, before_unix, count, exported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Kind, entry.Path, entry.Format, entry.AfterUnix, entry.BeforeUnix, entry.Count,
		entry.ExportedAt.UTC().Format(historyTimeLayout))
	if err != nil {
		return entry, fmt.Errorf("failed to record export: %w", err)
	}
	return entry, nil
}

// List returns up to limit entries, newest first; limit <= 0 returns all
func (h *History) List(ctx context.Context, limit int) ([]HistoryEntry, error) {
	query := `SELECT id, kind, path, format, after_unix, before_unix, count, exported_at
		FROM exports ORDER BY exported_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var exportedAt string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Path, &e.Format, &e.AfterUnix, &e.BeforeUnix, &e.Count, &exportedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if e.ExportedAt, err = time.Parse(time.RFC3339Nano, exportedAt); err != nil {
			return nil, fmt.Errorf("bad exported_at %q for %s: %w", exportedAt, e.ID, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}
