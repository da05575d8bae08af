/*
Package config loads server configuration from an optional TOML file.

PURPOSE:
  Central place for everything tunable at deploy time: listen address,
  database path, CORS origins, shutdown timeout. Flags in cmd/server
  override file values so local runs never need a config file.

FILE FORMAT (TOML):
  [server]
  host = "0.0.0.0"
  port = 8080
  shutdown_timeout_seconds = 30

  [database]
  path = "./data/moolah.db"

  [cors]
  allowed_origins = ["http://localhost:5173"]

SEE ALSO:
  - cmd/server/main.go: flag overrides and startup
*/
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	CORS     CORSConfig     `toml:"cors"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host                   string `toml:"host"`
	Port                   int    `toml:"port"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	// Path is the SQLite database file; ":memory:" for ephemeral runs.
	Path string `toml:"path"`
}

// CORSConfig configures cross-origin access for the frontend.
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:                   "",
			Port:                   8080,
			ShutdownTimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Path: "moolah.db",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
	}
}

// Load reads the TOML file at path, layered over defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
