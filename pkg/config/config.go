// Package config loads winrunner settings from YAML with environment
// variable overrides. The core consumes these values at construction time
// and never re-reads them.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Timeout      time.Duration `yaml:"timeout"`       // default resolution timeout
	PollInterval time.Duration `yaml:"poll_interval"` // wait engine poll interval
	Backend      string        `yaml:"backend"`       // "auto", "win32" or "uia"
	Agents       AgentsConfig  `yaml:"agents"`
	Cache        CacheConfig   `yaml:"cache"`
	DPI          DPIConfig     `yaml:"dpi"`
	Logging      LoggingConfig `yaml:"logging"`
}

// AgentsConfig holds the automation agent endpoints.
type AgentsConfig struct {
	Win32 string `yaml:"win32"`
	UIA   string `yaml:"uia"`
}

// CacheConfig sizes the handle caches. TTLs bound entry age only; handles
// are still validated before reuse.
type CacheConfig struct {
	ApplicationTTL  time.Duration `yaml:"application_ttl"`
	WindowTTL       time.Duration `yaml:"window_ttl"`
	ElementTTL      time.Duration `yaml:"element_ttl"`
	LocatorTTL      time.Duration `yaml:"locator_ttl"`
	ApplicationSize int           `yaml:"application_size"`
	WindowSize      int           `yaml:"window_size"`
	ElementSize     int           `yaml:"element_size"`
	LocatorSize     int           `yaml:"locator_size"`
}

// DPIConfig controls coordinate adaptation. Scale is fixed for the process
// lifetime; a live OS scale change requires a restart.
type DPIConfig struct {
	Enabled bool    `yaml:"enabled"`
	Scale   float64 `yaml:"scale"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		PollInterval: 500 * time.Millisecond,
		Backend:      "auto",
		Agents: AgentsConfig{
			Win32: "http://127.0.0.1:8039",
			UIA:   "http://127.0.0.1:4723",
		},
		Cache: CacheConfig{
			ApplicationTTL:  30 * time.Second,
			WindowTTL:       20 * time.Second,
			ElementTTL:      10 * time.Second,
			LocatorTTL:      5 * time.Second,
			ApplicationSize: 50,
			WindowSize:      100,
			ElementSize:     200,
			LocatorSize:     300,
		},
		DPI: DPIConfig{
			Enabled: true,
			Scale:   1.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path, merges it over the defaults and then
// applies environment overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variable overrides, applied after the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("WINRUNNER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("WINRUNNER_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("WINRUNNER_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("WINRUNNER_WIN32_AGENT"); v != "" {
		c.Agents.Win32 = v
	}
	if v := os.Getenv("WINRUNNER_UIA_AGENT"); v != "" {
		c.Agents.UIA = v
	}
	if v := os.Getenv("WINRUNNER_DPI_SCALE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DPI.Scale = f
		}
	}
	if v := os.Getenv("WINRUNNER_DPI_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DPI.Enabled = b
		}
	}
	if v := os.Getenv("WINRUNNER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	switch c.Backend {
	case "auto", "win32", "uia":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.DPI.Scale <= 0 {
		return fmt.Errorf("dpi scale must be positive, got %v", c.DPI.Scale)
	}
	return nil
}
