package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are the environment variables that take precedence over the
// config file.
type EnvOverrides struct {
	DBPath           string `env:"HABITAT_DB_PATH"`
	Workers          int    `env:"HABITAT_WORKERS"`
	OutputDir        string `env:"HABITAT_OUTPUT_DIR"`
	TransitionPolicy string `env:"HABITAT_TRANSITION_POLICY"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyEnv overlays HABITAT_* environment variables onto c and revalidates.
func (c *AnalysisConfig) ApplyEnv() error {
	var o EnvOverrides
	if err := ParseEnv(&o); err != nil {
		return err
	}
	if o.DBPath != "" {
		c.DBPath = &o.DBPath
	}
	if o.Workers != 0 {
		c.Workers = &o.Workers
	}
	if o.OutputDir != "" {
		c.OutputDir = &o.OutputDir
	}
	if o.TransitionPolicy != "" {
		c.TransitionPolicy = &o.TransitionPolicy
	}
	return c.Validate()
}

// LoadWithEnv loads the config at path, or starts from defaults when path is
// empty, and then applies environment overrides.
func LoadWithEnv(path string) (*AnalysisConfig, error) {
	cfg := EmptyAnalysisConfig()
	if path != "" {
		loaded, err := LoadAnalysisConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	return cfg, nil
}
