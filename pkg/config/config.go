// Package config loads process-wide pagelens configuration.
//
// Values resolve in three layers: built-in defaults, then the YAML config
// file (~/.pagelens/config.yaml unless a path is given), then PAGELENS_*
// environment variables. The result is immutable once loaded; the pool and
// tools receive copies, never the package state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"github.com/mstoykov/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "PAGELENS"

// Pool holds orchestrator settings. Interval fields are plain seconds so
// the YAML stays human-editable.
type Pool struct {
	MaxInstances               int  `yaml:"max_instances" envconfig:"MAX_INSTANCES"`
	NavigationTimeoutSeconds   int  `yaml:"navigation_timeout_seconds" envconfig:"NAVIGATION_TIMEOUT_SECONDS"`
	IdleTimeoutSeconds         int  `yaml:"idle_timeout_seconds" envconfig:"IDLE_TIMEOUT_SECONDS"`
	HealthCheckIntervalSeconds int  `yaml:"health_check_interval_seconds" envconfig:"HEALTH_CHECK_INTERVAL_SECONDS"`
	AutoCleanup                bool `yaml:"auto_cleanup" envconfig:"AUTO_CLEANUP"`
	ResourceMonitoring         bool `yaml:"resource_monitoring" envconfig:"RESOURCE_MONITORING"`
}

// NavigationTimeout returns the per-navigation deadline as a duration.
func (p Pool) NavigationTimeout() time.Duration {
	return time.Duration(p.NavigationTimeoutSeconds) * time.Second
}

// IdleTimeout returns the idle eviction threshold as a duration.
func (p Pool) IdleTimeout() time.Duration {
	return time.Duration(p.IdleTimeoutSeconds) * time.Second
}

// HealthCheckInterval returns the background health check cadence. Zero
// disables the background loop.
func (p Pool) HealthCheckInterval() time.Duration {
	return time.Duration(p.HealthCheckIntervalSeconds) * time.Second
}

// Metrics holds the telemetry endpoint settings.
type Metrics struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	Addr    string `yaml:"addr" envconfig:"ADDR"`
}

// Config is the full process configuration.
type Config struct {
	Pool    Pool    `yaml:"pool"`
	Metrics Metrics `yaml:"metrics"`

	// AllowedURLs restricts which URLs the analyze tools will accept.
	// Patterns use glob syntax, e.g. "https://*.example.com/*". An empty
	// list allows everything.
	AllowedURLs []string `yaml:"allowed_urls" envconfig:"-"`

	allowed []glob.Glob
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Pool: Pool{
			MaxInstances:               5,
			NavigationTimeoutSeconds:   30,
			IdleTimeoutSeconds:         300,
			HealthCheckIntervalSeconds: 60,
			AutoCleanup:                true,
			ResourceMonitoring:         true,
		},
		Metrics: Metrics{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pagelens", "config.yaml"), nil
}

// Load resolves configuration from defaults, the YAML file at path (missing
// files are fine) and PAGELENS_* environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No file: defaults plus env is a complete configuration.
	default:
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.compileAllowlist(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) compileAllowlist() error {
	c.allowed = c.allowed[:0]
	for _, pattern := range c.AllowedURLs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid allowed_urls pattern %q: %w", pattern, err)
		}
		c.allowed = append(c.allowed, g)
	}
	return nil
}

// URLAllowed reports whether the analyze tools may target url. An empty
// allowlist permits everything. Safe for concurrent use: a Config built by
// hand gets its patterns compiled into a local slice rather than mutating
// shared state.
func (c *Config) URLAllowed(url string) bool {
	if len(c.AllowedURLs) == 0 {
		return true
	}
	globs := c.allowed
	if len(globs) != len(c.AllowedURLs) {
		globs = make([]glob.Glob, 0, len(c.AllowedURLs))
		for _, pattern := range c.AllowedURLs {
			g, err := glob.Compile(pattern)
			if err != nil {
				return false
			}
			globs = append(globs, g)
		}
	}
	for _, g := range globs {
		if g.Match(url) {
			return true
		}
	}
	return false
}
