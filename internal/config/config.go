// Package config reads process-level settings from the environment.
// Command-line flags always win over these; they exist so deployments can
// steer the CLI without wrapper scripts.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the HERALD_* environment settings.
type Config struct {
	// AppID is the application bundle identifier stamped into push
	// payloads. Empty means the harness default applies.
	AppID string `mapstructure:"HERALD_APP_ID"`

	// JournalPath is the default journal database for commands that take
	// a --journal flag.
	JournalPath string `mapstructure:"HERALD_JOURNAL"`

	// LogLevel names the minimum slog level: debug, info, warn, or error.
	LogLevel string `mapstructure:"HERALD_LOG_LEVEL"`
}

// Load reads configuration from an optional .env file and the process
// environment. Environment values win over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	// Defaults double as key registration: viper only unmarshals keys it
	// has seen.
	v.SetDefault("HERALD_APP_ID", "")
	v.SetDefault("HERALD_JOURNAL", "")
	v.SetDefault("HERALD_LOG_LEVEL", "info")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := c.SlogLevel(); err != nil {
		return nil, err
	}

	return &c, nil
}

// SlogLevel translates the configured level name.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
