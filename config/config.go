// Package config loads thread manager presets from YAML files with
// environment variable overrides.
//
// Environment variables use the THREADMANAGER_ prefix, e.g.
// THREADMANAGER_WORKERS=8 overrides the workers field.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const envPrefix = "THREADMANAGER_"

// Config describes a simple thread manager preset.
type Config struct {
	// Name identifies the manager in logs and metric labels.
	Name string `yaml:"name" env:"NAME"`

	// Workers is the fleet size applied on Start.
	Workers int `yaml:"workers" env:"WORKERS"`

	// PendingTaskCountMax bounds the queued task count; 0 means no limit.
	PendingTaskCountMax int `yaml:"pending_task_count_max" env:"PENDING_TASK_COUNT_MAX"`

	// Detached selects the thread factory disposition. Joinable (false, the
	// default) threads are joined at teardown.
	Detached bool `yaml:"detached" env:"DETACHED"`
}

// Default returns the configuration used when a field is absent.
func Default() *Config {
	return &Config{Workers: 4}
}

// Load reads path as YAML, applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a configuration from defaults plus environment overrides
// only, for deployments without a config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("config: apply env overrides: %w", err)
	}
	return nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	if c.PendingTaskCountMax < 0 {
		return fmt.Errorf("config: pending_task_count_max must be non-negative, got %d", c.PendingTaskCountMax)
	}
	return nil
}
