package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "new file in missing directory",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "test.db")
			},
		},
		{
			name: "in-memory database",
			path: func(t *testing.T) string { return ":memory:" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenDatabase(tt.path(t))
			require.NoError(t, err)
			defer db.Close()

			_, err = db.Exec("CREATE TABLE t (v INTEGER)")
			require.NoError(t, err)
			_, err = db.Exec("INSERT INTO t (v) VALUES (1)")
			require.NoError(t, err)

			var n int
			require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
			assert.Equal(t, 1, n)
		})
	}
}

func TestOpenDatabaseReadOnly(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	rw, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	_, err = rw.Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	t.Run("existing database", func(t *testing.T) {
		db, err := OpenDatabaseReadOnly(dbPath)
		require.NoError(t, err)
		defer db.Close()

		_, err = db.Exec("INSERT INTO t (v) VALUES (1)")
		assert.Error(t, err, "write on read-only database should fail")
	})

	t.Run("non-existent database", func(t *testing.T) {
		// SQLite in read-only mode fails on Ping, not Open
		db, err := OpenDatabaseReadOnly(filepath.Join(tmpDir, "nonexistent.db"))
		if !assert.Error(t, err) {
			db.Close()
		}
	})
}
