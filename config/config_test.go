package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
add_source = true

[server]
host = "127.0.0.1"
port = 9090

[app]
user_id = "someone"

[db]
host = "db.internal"
port = 5433
user = "app"
password = "secret"
database = "taskflow"
pool_size = 20

[spaces]
key = "k"
secret = "s"
region = "ams3"
bucket = "backups"
root = "snapshots"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.True(t, cfg.Log.AddSource)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "someone", cfg.App.UserID)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, 20, cfg.DB.PoolSize)
	assert.Equal(t, "backups", cfg.Spaces.Bucket)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[db]
host = "localhost"
port = 5432
user = "app"
password = "secret"
database = "taskflow"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultUserID, cfg.App.UserID)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
