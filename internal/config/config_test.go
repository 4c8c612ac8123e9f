package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, uint16(101), cfg.Engine.MachineID)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.False(t, cfg.DevMode())
}

func TestLoadParsesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
logging:
  level: debug
  file: ./logs/app.log
features:
  dev_mode: true
engine:
  machine_id: 7
storage:
  driver: sqlite
  dsn: custom.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "./logs/app.log", cfg.Logging.File)
	assert.True(t, cfg.DevMode())
	assert.Equal(t, uint16(7), cfg.Engine.MachineID)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "custom.db", cfg.Storage.DSN)
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
telemetry:
  endpoint: somewhere
some_future_flag: 42
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: cassandra
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "7777", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
