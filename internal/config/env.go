package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from RUNLOG_* variables. Empty fields leave
// the file and flag values alone.
type EnvConfig struct {
	ConfigPath   string `env:"RUNLOG_CONFIG"`
	TelemetryDir string `env:"RUNLOG_TELEMETRY_DIR"`
	DBPath       string `env:"RUNLOG_DB"`
	LogLevel     string `env:"RUNLOG_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv reads the RUNLOG_* overrides.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := ParseEnv(&cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// SlogLevel maps a level name to a slog level.
func SlogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
