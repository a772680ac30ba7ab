// Package config loads sqlbridge process configuration.
//
// Precedence, highest first: the DATABASE_URL environment variable, then a
// config.toml (an explicit --config path, else the working directory, else
// the directory of the executable), then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults applied when neither the environment nor a config file says
// otherwise.
const (
	DefaultDatabaseURL = "sqlite://./app.sqlite"
	DefaultMaxConns    = 5
)

// Config is the process configuration.
type Config struct {
	Database struct {
		URL      string `mapstructure:"url"`
		MaxConns int    `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Load reads configuration. An explicit path must exist; the implicit
// search locations are optional and defaults apply when nothing is found.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("database.max_conns", DefaultMaxConns)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(exe))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = DefaultMaxConns
	}
	return &cfg, nil
}

// DSN returns the database URL as a driver data source name. The
// sqlite:// scheme prefix is stripped; a bare path passes through.
func (c *Config) DSN() string {
	url := c.Database.URL
	if strings.HasPrefix(url, "sqlite://") {
		return strings.TrimPrefix(url, "sqlite://")
	}
	if strings.HasPrefix(url, "sqlite:") {
		return strings.TrimPrefix(url, "sqlite:")
	}
	return url
}
