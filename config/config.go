// Package config loads photofeed settings.
//
// Sources, highest priority first:
//  1. explicit path (--config);
//  2. PHOTOFEED_CONFIG;
//  3. ./photofeed.yaml;
//  4. environment only.
//
// Environment variables always override values read from a file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "photofeed.yaml"

type Config struct {
	API API `yaml:"api"`
	DB  DB  `yaml:"db"`
}

// API holds the endpoints and OAuth client credentials.
type API struct {
	BaseURL     string        `yaml:"base_url"     env:"PHOTOFEED_API_URL"      env-default:"https://api.unsplash.com"`
	AuthURL     string        `yaml:"auth_url"     env:"PHOTOFEED_AUTH_URL"     env-default:"https://unsplash.com"`
	AccessKey   string        `yaml:"access_key"   env:"PHOTOFEED_ACCESS_KEY"`
	SecretKey   string        `yaml:"secret_key"   env:"PHOTOFEED_SECRET_KEY"`
	RedirectURI string        `yaml:"redirect_uri" env:"PHOTOFEED_REDIRECT_URI" env-default:"urn:ietf:wg:oauth:2.0:oob"`
	Scopes      []string      `yaml:"scopes"       env:"PHOTOFEED_SCOPES"       env-default:"public,read_user,write_likes"`
	PerPage     int           `yaml:"per_page"     env:"PHOTOFEED_PER_PAGE"     env-default:"10"`
	Timeout     time.Duration `yaml:"timeout"      env:"PHOTOFEED_TIMEOUT"      env-default:"30s"`
}

// DB holds the location of the SQLite database backing the secret store.
type DB struct {
	Path string `yaml:"path" env:"PHOTOFEED_DB_PATH"`
}

// DefaultDBPath is used when no database path is configured.
func DefaultDBPath() string {
	return filepath.Join(os.Getenv("HOME"), ".photofeed", "photofeed.db")
}

// Validate checks the values the core cannot work without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url cannot be empty")
	}
	if c.API.AuthURL == "" {
		return fmt.Errorf("api auth_url cannot be empty")
	}
	if c.API.PerPage <= 0 {
		return fmt.Errorf("api per_page must be positive, got %d", c.API.PerPage)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}
	return nil
}

func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}
		return finish(&cfg)
	}

	if path != "" {
		return readFile(path)
	}
	if envPath := os.Getenv("PHOTOFEED_CONFIG"); envPath != "" {
		return readFile(envPath)
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return readFile(DefaultFileName)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	if cfg.DB.Path == "" {
		cfg.DB.Path = DefaultDBPath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
