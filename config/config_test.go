package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoad_FileLayersOverDefaults(t *testing.T) {
	// GIVEN: A config file that sets only a subset of the fields
	// WHEN: Loading it
	// THEN: Set fields win and unset fields keep their defaults

	path := filepath.Join(t.TempDir(), "moolah.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
host = "127.0.0.1"
port = 9090

[database]
path = "/var/lib/moolah/moolah.db"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, "/var/lib/moolah/moolah.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.Server.ShutdownTimeoutSeconds)
	assert.Equal(t, Default().CORS.AllowedOrigins, cfg.CORS.AllowedOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport="), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
