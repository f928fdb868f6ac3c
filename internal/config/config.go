// Package config holds the viper-backed program settings. These are the
// tool's own knobs (directories, socket, logging), distinct from the
// per-session descriptors in the config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete tmuxup configuration.
type Config struct {
	// ConfigDir overrides where session descriptor files are looked up.
	// Empty means the default user config directory.
	ConfigDir string `mapstructure:"config_dir"`
	// Socket selects an alternate tmux server. A bare name maps to
	// tmux's -L flag, a path (anything containing a separator) to -S.
	Socket  string        `mapstructure:"socket"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls the debug log file.
type LoggingConfig struct {
	// Enabled turns file logging off entirely when false.
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum level written: debug, info, warn, or error.
	Level string `mapstructure:"level"`
	// MaxSizeMB caps the log file size before it is rotated.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is how many rotated files to keep around.
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns the built-in settings: descriptors in the user config
// directory, the ambient tmux server, and info-level logging capped at
// 10MB with 3 backups.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Enabled: true, Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// SetDefaults registers every default value with viper so flags and the
// config file only need to name what they change.
func SetDefaults() {
	d := Default()
	for key, value := range map[string]any{
		"config_dir":          d.ConfigDir,
		"socket":              d.Socket,
		"logging.enabled":     d.Logging.Enabled,
		"logging.level":       d.Logging.Level,
		"logging.max_size_mb": d.Logging.MaxSizeMB,
		"logging.max_backups": d.Logging.MaxBackups,
	} {
		viper.SetDefault(key, value)
	}
}

// Load reads the configuration from viper into a Config struct and
// validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when
// loading fails. A broken config file should not take the CLI down.
func Get() *Config {
	if cfg, err := Load(); err == nil {
		return cfg
	}
	return Default()
}

// SessionDir returns the directory session descriptors are read from:
// the configured override when set (with a leading ~ expanded), the
// default user config directory otherwise.
func (c *Config) SessionDir() string {
	if c.ConfigDir == "" {
		return ConfigDir()
	}
	return expandHome(c.ConfigDir)
}

// expandHome resolves a leading ~ against the user's home directory,
// returning the path untouched when home cannot be determined.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ConfigDir returns the user's tmuxup config directory, honoring
// XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tmuxup")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tmuxup"
	}
	return filepath.Join(home, ".config", "tmuxup")
}

// ConfigFile returns the path of the tool's own config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LogDir returns the directory debug logs are written to.
func LogDir() string {
	return filepath.Join(ConfigDir(), "logs")
}
