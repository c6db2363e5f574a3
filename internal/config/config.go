// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultAddr      = ":8080"
	DefaultBackend   = "memory"
	DefaultViewLimit = 50
)

// Config holds the full configuration for notedown.
type Config struct {
	Addr    string        `toml:"addr"`
	Storage StorageConfig `toml:"storage"`
	View    ViewConfig    `toml:"view"`
}

// StorageConfig selects and parameterizes the backing store.
type StorageConfig struct {
	Backend string `toml:"backend"` // memory, sqlite, postgres
	Path    string `toml:"path"`    // sqlite database file
	URL     string `toml:"url"`     // postgres connection string
}

// ViewConfig parameterizes client-side projections.
type ViewConfig struct {
	Limit int `toml:"limit"`
}

// Load loads configuration in priority order: defaults, then the TOML
// file (explicit path, else notedown.toml in the working directory,
// else ~/.notedown/config.toml), then environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr: DefaultAddr,
		Storage: StorageConfig{
			Backend: DefaultBackend,
			Path:    defaultSQLitePath(),
		},
		View: ViewConfig{Limit: DefaultViewLimit},
	}

	file := findConfigFile(path)
	if file != "" {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", file, err)
		}
	}

	loadFromEnv(cfg)

	switch cfg.Storage.Backend {
	case "memory", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return cfg, nil
}

func findConfigFile(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat("notedown.toml"); err == nil {
		return "notedown.toml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	file := filepath.Join(home, ".notedown", "config.toml")
	if _, err := os.Stat(file); err == nil {
		return file
	}
	return ""
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("NOTEDOWN_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("NOTEDOWN_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("NOTEDOWN_SQLITE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.URL = v
	}
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "notedown.db"
	}
	return filepath.Join(home, ".notedown", "notedown.db")
}
