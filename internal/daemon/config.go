// Package daemon manages the Steady daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	User      UserConfig      `toml:"user"`
	API       APIConfig       `toml:"api"`
	Tracking  TrackingConfig  `toml:"tracking"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// UserConfig identifies the local user.
type UserConfig struct {
	ID       string `toml:"id"`
	Timezone string `toml:"timezone"` // IANA name, e.g. "America/New_York"
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// TrackingConfig tunes the habit engines.
type TrackingConfig struct {
	WindowDays    int `toml:"window_days"`    // consistency window
	StreakFreezes int `toml:"streak_freezes"` // default forgiveness budget
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := steadyHome()
	return Config{
		User: UserConfig{
			ID:       "local",
			Timezone: "UTC",
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        7171,
			CORSOrigins: []string{"*"},
		},
		Tracking: TrackingConfig{
			WindowDays:    30,
			StreakFreezes: 1,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "steady.log"),
		},
	}
}

// LoadConfig reads config from ~/.steady/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(steadyHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // no config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.steady/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(steadyHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// steadyHome returns the Steady data directory.
func steadyHome() string {
	if env := os.Getenv("STEADY_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".steady")
}

// SteadyHome is exported for use by other packages.
func SteadyHome() string {
	return steadyHome()
}
