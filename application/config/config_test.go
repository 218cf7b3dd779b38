package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPluginsDir(), cfg.PluginsDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Watch)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LAPCE_PLUGINS_DIR", "/opt/plugins")
	t.Setenv("LAPCE_LOG_LEVEL", "debug")
	t.Setenv("LAPCE_WATCH", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/plugins", cfg.PluginsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Watch)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plugins_dir: /srv/ext\nwatch: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/ext", cfg.PluginsDir)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultPluginsDirUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".lapce", "plugins"), DefaultPluginsDir())
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Config{LogLevel: tt.name}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.name)
	}
}
