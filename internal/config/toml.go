// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game      GameConfig      `toml:"game"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// GameConfig maps level routing and interaction settings.
type GameConfig struct {
	Hub              *string  `toml:"hub"`
	ReachExitLevel   *string  `toml:"reach-exit-level"`
	KillAllLevel     *string  `toml:"kill-all-level"`
	HeistLevel       *string  `toml:"heist-level"`
	InteractDistance *float64 `toml:"interact-distance"`
	Levels           *string  `toml:"levels"`
	VisualRange      *float64 `toml:"visual-range"`
	Seed             *int64   `toml:"seed"`
}

// TelemetryConfig maps telemetry output settings.
type TelemetryConfig struct {
	Dir     *string `toml:"dir"`
	Enabled *bool   `toml:"enabled"`
	Async   *bool   `toml:"async"`
	History *bool   `toml:"history"`
	DB      *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
