// Package config loads the driver's YAML configuration, following the
// same Duration/Validate/environment-override pattern the rest of this
// module's ancestry uses for its own settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for the driver binary.
type Config struct {
	Interpreter string      `yaml:"interpreter"`
	Roots       []string    `yaml:"roots"`
	Timeout     Duration    `yaml:"timeout"`
	Pool        PoolConfig  `yaml:"pool"`
	Arena       ArenaConfig `yaml:"arena"`
}

// PoolConfig controls the worker pool that runs parse-and-extract jobs.
type PoolConfig struct {
	MaxThreads int `yaml:"max_threads"`
	StackSize  int `yaml:"stack_size"`
}

// ArenaConfig controls the growth arena backing each parse job.
type ArenaConfig struct {
	InitialBytes int `yaml:"initial_bytes"`
	MaxBytes     int `yaml:"max_bytes"`
}

// Duration is a yaml- and json-unmarshallable time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler for Duration.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

// Load reads and parses the YAML config at path, then applies any
// PYIMPORTLS_* environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv overrides config fields with values from PYIMPORTLS_* env vars.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PYIMPORTLS_INTERPRETER"); v != "" {
		cfg.Interpreter = v
	}
}

// Validate fills in defaults and rejects values that cannot be made
// sensible.
func Validate(cfg *Config) error {
	if cfg.Interpreter == "" {
		cfg.Interpreter = "python3"
	}
	if cfg.Timeout.Duration == 0 {
		cfg.Timeout.Duration = 30 * time.Second
	}

	if cfg.Pool.MaxThreads <= 0 {
		cfg.Pool.MaxThreads = 4
	}
	if cfg.Pool.StackSize < 0 {
		return fmt.Errorf("pool.stack_size must not be negative, got %d", cfg.Pool.StackSize)
	}

	if cfg.Arena.InitialBytes <= 0 {
		cfg.Arena.InitialBytes = 1 << 16
	}
	if cfg.Arena.MaxBytes != 0 && cfg.Arena.MaxBytes < cfg.Arena.InitialBytes {
		return fmt.Errorf("arena.max_bytes (%d) must be at least arena.initial_bytes (%d)", cfg.Arena.MaxBytes, cfg.Arena.InitialBytes)
	}

	return nil
}
