package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8084, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, ".", cfg.Data.Dir)
	assert.Equal(t, "transactions.csv", cfg.Data.TransactionsFile)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "localhost:8084", cfg.Address())
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, filepath.Join("/srv/data", "customers.csv"), cfg.Data.CustomersPath())
	assert.Equal(t, "text", cfg.Logger.Format)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"zero rps", "RATE_LIMIT_RPS", "0"},
		{"not a number", "SERVER_PORT", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "shopq.toml", "[data]\ndir = \"/tmp/shop\"\n\n[logger]\nlevel = \"warn\"\n"},
		{"yaml", "shopq.yaml", "data:\n  dir: /tmp/shop\nlogger:\n  level: warn\n"},
		{"json", "shopq.json", `{"data":{"dir":"/tmp/shop"},"logger":{"level":"warn"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cfg, err := Load()
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			require.NoError(t, LoadFile(cfg, path))
			assert.Equal(t, "/tmp/shop", cfg.Data.Dir)
			assert.Equal(t, "warn", cfg.Logger.Level)
			assert.Equal(t, "transactions.csv", cfg.Data.TransactionsFile)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	dir := t.TempDir()
	assert.Error(t, LoadFile(cfg, filepath.Join(dir, "missing.toml")))
	assert.Error(t, LoadFile(cfg, dir))

	ini := filepath.Join(dir, "shopq.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o600))
	assert.ErrorContains(t, LoadFile(cfg, ini), "unsupported")
}
