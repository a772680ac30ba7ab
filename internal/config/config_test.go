package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, `
[database]
url = "sqlite:///data/warp.sqlite"
max_conns = 8

[log]
level = "debug"
format = "text"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite:///data/warp.sqlite", cfg.Database.URL)
	assert.Equal(t, 8, cfg.Database.MaxConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no stray config.toml is picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseURL, cfg.Database.URL)
	assert.Equal(t, DefaultMaxConns, cfg.Database.MaxConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[database]
url = "sqlite://./from-file.sqlite"
`)
	t.Setenv("DATABASE_URL", "sqlite://./from-env.sqlite")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://./from-env.sqlite", cfg.Database.URL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, `[database`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadNonPositiveMaxConns(t *testing.T) {
	path := writeConfig(t, `
[database]
max_conns = -1
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxConns, cfg.Database.MaxConns)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "scheme with slashes", url: "sqlite:///abs/path.sqlite", want: "/abs/path.sqlite"},
		{name: "scheme relative", url: "sqlite://./app.sqlite", want: "./app.sqlite"},
		{name: "short scheme", url: "sqlite:app.sqlite", want: "app.sqlite"},
		{name: "bare path", url: "/plain/path.db", want: "/plain/path.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.Database.URL = tt.url
			assert.Equal(t, tt.want, cfg.DSN())
		})
	}
}
