package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Game.Hub)
	assert.Nil(t, cfg.Telemetry.Enabled)
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[game]
hub = "Atrium"
interact-distance = 1.5
seed = 7

[telemetry]
enabled = false
dir = "/tmp/runs"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Game.Hub)
	assert.Equal(t, "Atrium", *cfg.Game.Hub)
	require.NotNil(t, cfg.Game.InteractDistance)
	assert.Equal(t, 1.5, *cfg.Game.InteractDistance)
	require.NotNil(t, cfg.Game.Seed)
	assert.Equal(t, int64(7), *cfg.Game.Seed)
	require.NotNil(t, cfg.Telemetry.Enabled)
	assert.False(t, *cfg.Telemetry.Enabled)
	assert.Equal(t, "/tmp/runs", *cfg.Telemetry.Dir)
	assert.Nil(t, cfg.Telemetry.Async)
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[game]\nhubb = \"x\"\n"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game.hubb")
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "runlog", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "runlog", "runlog.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/data", "runlog", "telemetry"), DefaultTelemetryDir())
	assert.Equal(t, filepath.Join("/data", "runlog", "runlog.log"), DefaultLogPath())
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("RUNLOG_TELEMETRY_DIR", "/runs")
	t.Setenv("RUNLOG_DB", "/db/h.db")
	t.Setenv("RUNLOG_LOG_LEVEL", "debug")
	cfg, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "/runs", cfg.TelemetryDir)
	assert.Equal(t, "/db/h.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvDefaultsLogLevel(t *testing.T) {
	t.Setenv("RUNLOG_LOG_LEVEL", "")
	os.Unsetenv("RUNLOG_LOG_LEVEL")
	cfg, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestSlogLevel(t *testing.T) {
	lvl, err := SlogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
	_, err = SlogLevel("loud")
	require.Error(t, err)
}
