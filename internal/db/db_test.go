package db_test

import (
	"database/sql"
	"net/url"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"ytt/backend/internal/db"

	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	database, err := db.Open(dbPath)
	require.NoError(t, err)
	require.NotNil(t, database)
	defer database.Close()

	var name string
	err = database.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='settings'").Scan(&name)
	require.NoError(t, err)
	require.Equal(t, "settings", name)
}

// Pragmas applied via Exec only affect one pooled connection, so they must
// travel in the DSN.
func TestBuildDSN_AllPragmasInDSN(t *testing.T) {
	dsn := db.BuildDSN("mydb.sqlite")
	require.Contains(t, dsn, "file:mydb.sqlite")

	decodedDSN, err := url.QueryUnescape(dsn)
	require.NoError(t, err)

	for _, pragma := range []string{
		"journal_mode(WAL)",
		"foreign_keys(ON)",
		"busy_timeout(30000)",
		"synchronous(NORMAL)",
	} {
		require.Contains(t, decodedDSN, pragma, "DSN must contain pragma: "+pragma)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "twice.db"))
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(`INSERT INTO settings (key, value, updated_at) VALUES ('ai.model', 'gpt-4o-mini', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	require.NoError(t, db.Migrate(database))

	var value string
	require.NoError(t, database.QueryRow(`SELECT value FROM settings WHERE key = 'ai.model'`).Scan(&value))
	require.Equal(t, "gpt-4o-mini", value)
}

func TestMigrate_ClosedDB(t *testing.T) {
	database, err := sql.Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Close())

	err = db.Migrate(database)
	require.Error(t, err)
}
