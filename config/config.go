// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Defaults  []DefaultConfig `yaml:"defaults"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CatalogConfig configures the collection catalog.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"` // reload on file change
}

// EndpointsConfig configures endpoint resolution.
type EndpointsConfig struct {
	// Overrides maps an API name to a replacement endpoint URL.
	Overrides map[string]string `yaml:"overrides"`

	// CanonicalSuffixes are the host suffixes recognized as first-party
	// API hosts when inferring an API from a URL.
	CanonicalSuffixes []string `yaml:"canonical_suffixes"`
}

// DefaultConfig seeds one parameter default at startup. An empty
// collection applies the default to every collection of the API.
type DefaultConfig struct {
	API        string `yaml:"api"`
	Collection string `yaml:"collection,omitempty"`
	Param      string `yaml:"param"`
	Value      string `yaml:"value"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment variables always override file values
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	APIREF_CATALOG_PATH    - Catalog file path (required)
//	APIREF_CATALOG_WATCH   - Reload catalog on file change (default: true)
//	APIREF_DATABASE_DSN    - Database path (default: apiref.db)
//	APIREF_SERVER_HOST     - Server host (default: 0.0.0.0)
//	APIREF_SERVER_PORT     - Server port (default: 8080)
//	APIREF_LOG_LEVEL       - Log level: debug, info, warn, error (default: info)
//	APIREF_LOG_FORMAT      - Log format: json or console (default: json)
//	APIREF_METRICS_ENABLED - Enable /metrics endpoint (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if os.Getenv("APIREF_CATALOG_PATH") != "" {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set APIREF_CATALOG_PATH")
}

// applyEnvOverrides applies APIREF_* environment variables to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APIREF_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("APIREF_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("APIREF_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("APIREF_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("APIREF_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("APIREF_CATALOG_WATCH"); v != "" {
		cfg.Catalog.Watch = parseBool(v)
	}

	if v := os.Getenv("APIREF_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("APIREF_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("APIREF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("APIREF_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("APIREF_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("APIREF_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "apiref.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}

	for api, endpoint := range cfg.Endpoints.Overrides {
		if api == "" {
			return fmt.Errorf("endpoints.overrides has an entry with no api name")
		}
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			return fmt.Errorf("endpoints.overrides[%s] must be an http(s) URL, got %q", api, endpoint)
		}
	}

	for i, d := range cfg.Defaults {
		if d.API == "" {
			return fmt.Errorf("defaults[%d].api is required", i)
		}
		if d.Param == "" {
			return fmt.Errorf("defaults[%d].param is required", i)
		}
		if d.Value == "" {
			return fmt.Errorf("defaults[%d].value is required", i)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}
