// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	API       APIConfig       `toml:"api"`
	Dashboard DashboardConfig `toml:"dashboard"`
}

// APIConfig maps rate provider settings.
type APIConfig struct {
	URL     *string `toml:"url"`
	Timeout *string `toml:"timeout"`
}

// DashboardConfig maps dashboard settings.
type DashboardConfig struct {
	From    *string `toml:"from"`
	To      *string `toml:"to"`
	Days    *int    `toml:"days"`
	Refresh *string `toml:"refresh"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ParseDuration parses an optional duration value. A nil value yields ok=false.
func ParseDuration(name string, value *string) (time.Duration, bool, error) {
	if value == nil {
		return 0, false, nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: %w", name, *value, err)
	}
	if d <= 0 {
		return 0, false, fmt.Errorf("%s must be > 0", name)
	}
	return d, true, nil
}
