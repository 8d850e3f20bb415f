package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all stalewatch configuration.
type Config struct {
	// ThresholdMonths is the number of whole calendar months of inactivity
	// that defines the active/stale boundary (exclusive). Values <= 0 are
	// accepted: everything with any elapsed months becomes stale.
	ThresholdMonths int `toml:"threshold_months"`

	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		ThresholdMonths: 12,
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37791,
		},
	}
}

// Load reads a TOML config file, layering it over Default(). A missing file
// is not an error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
