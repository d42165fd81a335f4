package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_albums.sql": {Data: []byte("SELECT 1;")},
		"migrations/001_init.sql":   {Data: []byte("SELECT 1;")},
		"migrations/README.md":      {Data: []byte("notes")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	require.Equal(t, []string{"001_init.sql", "002_albums.sql"}, files)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := migrationFiles(migrationFS)
	require.NoError(t, err)
	require.Contains(t, files, "001_init.sql")
	require.Contains(t, files, "002_rate_limits.sql")
}
