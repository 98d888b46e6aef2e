package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/freight?sslmode=disable", migrationURL("postgres://u:p@db:5432/freight?sslmode=disable"))
	assert.Equal(t, "pgx5://db/freight", migrationURL("postgresql://db/freight"))
	assert.Equal(t, "pgx5://db/freight", migrationURL("pgx5://db/freight"))
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")

	up, err := fs.ReadFile(migrationFiles, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "ux_house_documents_number_active")
	assert.Contains(t, string(up), "ux_master_documents_number_active")
}
