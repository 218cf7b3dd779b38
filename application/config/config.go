// Package config resolves the proxy's host-side configuration from
// defaults, an optional config file, and LAPCE_-prefixed environment
// variables, in ascending precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the host configuration.
type Config struct {
	PluginsDir string `mapstructure:"plugins_dir"`
	LogLevel   string `mapstructure:"log_level"`
	Watch      bool   `mapstructure:"watch"`
}

// Load resolves the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("plugins_dir", DefaultPluginsDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("watch", false)
	v.SetEnvPrefix("LAPCE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// DefaultPluginsDir is ~/.lapce/plugins, falling back to a relative path
// when the home directory is unknown.
func DefaultPluginsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lapce", "plugins")
	}
	return filepath.Join(home, ".lapce", "plugins")
}

// SlogLevel maps the configured level name onto slog. Unknown names fall
// back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
