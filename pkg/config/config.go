// Package config handles workspace configuration for uiquery.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Retry defaults for root acquisition.
const (
	DefaultRetryAttempts   = 4
	DefaultRetryIntervalMs = 250
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Tree acquisition
	Snapshot string `yaml:"snapshot"` // Hierarchy dump to query
	Window   string `yaml:"window"`   // Default window title hint

	Retry struct {
		Attempts   int `yaml:"attempts"`   // Retries after the first acquisition attempt
		IntervalMs int `yaml:"intervalMs"` // Fixed wait between attempts
	} `yaml:"retry"`

	// Variables available to ${...} expressions in selector files
	Vars map[string]string `yaml:"vars"`

	// Diagnostics
	Verbose bool   `yaml:"verbose"`
	LogFile string `yaml:"logFile"`
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// RetryAttempts returns the configured retry count, or the default.
func (c *Config) RetryAttempts() int {
	if c.Retry.Attempts > 0 {
		return c.Retry.Attempts
	}
	return DefaultRetryAttempts
}

// RetryInterval returns the configured retry interval, or the default.
func (c *Config) RetryInterval() time.Duration {
	ms := c.Retry.IntervalMs
	if ms <= 0 {
		ms = DefaultRetryIntervalMs
	}
	return time.Duration(ms) * time.Millisecond
}
