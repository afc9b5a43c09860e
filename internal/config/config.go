// Package config loads the settings of the tabula CLI and server.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/aretw0/tabula/internal/logging"
)

// Config holds the CLI and server configuration.
// Values come from an optional YAML file; TABULA_* environment variables
// override them. Secrets only come from the environment.
type Config struct {
	LogLevel    string `yaml:"log_level" env:"TABULA_LOG_LEVEL" env-default:"info"`
	SchemaDir   string `yaml:"schema_dir" env:"TABULA_SCHEMA_DIR" env-default:"schemas"`
	Parallelism int    `yaml:"parallelism" env:"TABULA_PARALLELISM" env-default:"1"`
	FailFast    bool   `yaml:"fail_fast" env:"TABULA_FAIL_FAST" env-default:"false"`

	HTTP  HTTPConfig  `yaml:"http"`
	Store StoreConfig `yaml:"store"`
}

// HTTPConfig configures `tabula serve`.
type HTTPConfig struct {
	BindAddr       string   `yaml:"bind_addr" env:"TABULA_HTTP_BIND_ADDR" env-default:"127.0.0.1"`
	Port           int      `yaml:"port" env:"TABULA_HTTP_PORT" env-default:"8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"TABULA_HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	Metrics        bool     `yaml:"metrics" env:"TABULA_HTTP_METRICS" env-default:"true"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" env:"TABULA_HTTP_MAX_BODY_BYTES" env-default:"33554432"`
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.Port)
}

// Store kinds.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// StoreConfig selects where validation reports are kept.
type StoreConfig struct {
	Kind   string        `yaml:"kind" env:"TABULA_STORE" env-default:"memory"`
	Path   string        `yaml:"path" env:"TABULA_STORE_PATH" env-default:".tabula/reports"`
	TTL    time.Duration `yaml:"ttl" env:"TABULA_STORE_TTL" env-default:"0s"`
	Prefix string        `yaml:"prefix" env:"TABULA_STORE_PREFIX" env-default:"tabula:report:"`
	// Redact lists column patterns whose offending values are masked in stored reports.
	Redact []string `yaml:"redact" env:"TABULA_STORE_REDACT" env-separator:","`

	RedisAddr     string `yaml:"redis_addr" env:"TABULA_REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"-" env:"TABULA_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"TABULA_REDIS_DB" env-default:"0"`
}

// Load reads the configuration from path, or from the environment alone
// when path is empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot check by itself.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTP.Port)
	}
	switch c.Store.Kind {
	case StoreNone, StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("store ttl must not be negative")
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	lvl, _ := logging.ParseLevel(c.LogLevel)
	return lvl
}
