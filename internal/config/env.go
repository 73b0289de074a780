// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package config loads CLI defaults from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. VANIFY_WORKERS.
const Prefix = "vanify"

// Config contains the defaults applied to flags that were not set on the
// command line. Fields stay untagged: envconfig falls back to the unprefixed
// name for tagged fields, which would pick up PATH and LANGUAGE.
type Config struct {
	Output   string
	Workers  int           `default:"1"`
	Words    int           `default:"12"`
	Language string        `default:"en"`
	Path     string        `default:"m/44'/501'/0'/0'"`
	Policy   string        `default:"grouped"`
	Progress time.Duration `default:"5s"`
	Verbose  bool          `default:"false"`
}

// Load reads the VANIFY_* variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("VANIFY_WORKERS must not be negative, got %d", cfg.Workers)
	}
	return cfg, nil
}

// OutputFor returns the configured output path, or "<target>.txt" when none
// is set.
func (c *Config) OutputFor(target string) string {
	if c.Output != "" {
		return c.Output
	}
	return target + ".txt"
}
