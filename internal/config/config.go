// Package config loads server settings from a YAML file, then applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation and parse failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	AdminKey    string   `yaml:"admin_key"` // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RateLimitConfig bounds the batch chart endpoint per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// DefaultsConfig holds calculation defaults.
type DefaultsConfig struct {
	Period int `yaml:"period"` // Used when a request omits the period
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:    ServerConfig{Port: 8080},
		Database:  DatabaseConfig{Path: "data/fengshui.db"},
		RateLimit: RateLimitConfig{Requests: 60, Window: time.Hour},
		Defaults:  DefaultsConfig{Period: 9},
	}
}

// Load reads path (a missing file yields the defaults), applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults only.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w: %v", path, ErrInvalidConfig, err)
			}
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from FENGSHUI_* variables and CORS_ORIGINS.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("FENGSHUI_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FENGSHUI_PORT=%q: %w", v, ErrInvalidConfig)
		}
		c.Server.Port = port
	}
	if v := getenv("FENGSHUI_ADMIN_KEY"); v != "" {
		c.Server.AdminKey = v
	}
	if v := getenv("FENGSHUI_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := getenv("FENGSHUI_PERIOD"); v != "" {
		period, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FENGSHUI_PERIOD=%q: %w", v, ErrInvalidConfig)
		}
		c.Defaults.Period = period
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, origin)
			}
		}
	}
	return nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d: %w", c.Server.Port, ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is empty: %w", ErrInvalidConfig)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit must be positive: %w", ErrInvalidConfig)
	}
	if c.Defaults.Period < 1 || c.Defaults.Period > 9 {
		return fmt.Errorf("defaults.period %d: %w", c.Defaults.Period, ErrInvalidConfig)
	}
	return nil
}
