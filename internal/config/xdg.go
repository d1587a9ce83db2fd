// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appDir = "runlog"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

// DefaultDBPath returns the default path for the completion history database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appDir, "runlog.db")
}

// DefaultTelemetryDir returns the directory playthrough files are written to.
func DefaultTelemetryDir() string {
	return filepath.Join(XDGDataHome(), appDir, "telemetry")
}

// DefaultLogPath returns the log file used while the play screen owns the terminal.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appDir, "runlog.log")
}
