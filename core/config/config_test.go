package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 64, cfg.Server.BodyLimitMB)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "lakehouse", cfg.Storage.Bucket)
	assert.Equal(t, "etl_job_status", cfg.Job.StatusTable)
	assert.Equal(t, "lakehouse", cfg.Lakehouse.Dataset)
	assert.Equal(t, "https://api.fabric.microsoft.com/v1", cfg.Deploy.BaseURL)
	assert.True(t, cfg.Sync.Enabled)
}

func TestLoadConfig_Sources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"database:\n  driver: postgres\n  port: 5433\nsync:\n  schema_path: schema.yaml\n",
	), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JOB_NAME=people_sync\n"), 0o644))
	t.Setenv("DATABASE_PORT", "6543")
	t.Cleanup(func() { os.Unsetenv("JOB_NAME") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "schema.yaml", cfg.Sync.SchemaPath)
	assert.Equal(t, "people_sync", cfg.Job.Name)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database: [unterminated"), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
