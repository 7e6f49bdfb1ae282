package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigURL(t *testing.T) {
	cfg := Config{Host: "db", User: "bot", Password: "p@ss:word", Name: "intake"}
	require.True(t, cfg.Enabled())
	cfg.Normalize()
	assert.Equal(t, "postgres://bot:p%40ss%3Aword@db:5432/intake?sslmode=disable", cfg.URL())
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, 5, cfg.MaxConnections)

	assert.False(t, Config{}.Enabled())
}

func TestMigrationFileHelpers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.up.sql", "000001_a.up.sql", "000001_a.down.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	files := upFiles(dir)
	assert.Equal(t, []string{"000001_a.up.sql", "000002_b.up.sql"}, files)
	assert.Equal(t, []string{"000002_b.up.sql"}, appliedBetween(files, 1, 2))
	assert.Empty(t, appliedBetween(files, 2, 2))
	assert.Nil(t, upFiles(filepath.Join(dir, "missing")))
}
