package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvAPIURL     = "FXDASH_API_URL"
	EnvAPITimeout = "FXDASH_API_TIMEOUT"
)

// LoadDotEnv loads variables from a .env file without overriding the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file values with environment variables.
func ApplyEnv(cfg FileConfig) FileConfig {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg FileConfig, lookup func(string) (string, bool)) FileConfig {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		cfg.API.URL = &v
	}
	if v, ok := lookup(EnvAPITimeout); ok && v != "" {
		cfg.API.Timeout = &v
	}
	return cfg
}
