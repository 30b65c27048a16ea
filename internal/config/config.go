// Package config loads engine configuration from the environment into named
// structs. No module-level mutable state.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// #region config
// Config is the process-level configuration.
type Config struct {
	DBPath  string `env:"EXAMTUTOR_DB" envDefault:"examtutor.db"`
	ScopeID string `env:"EXAMTUTOR_SCOPE" envDefault:"default"`

	APIKey  string `env:"EXAMTUTOR_API_KEY"`
	BaseURL string `env:"EXAMTUTOR_BASE_URL"`

	FastModel  string `env:"EXAMTUTOR_FAST_MODEL" envDefault:"gpt-4o-mini"`
	SmartModel string `env:"EXAMTUTOR_SMART_MODEL" envDefault:"gpt-4o"`

	// Custom bring-your-own endpoint. When set, every call bypasses tiering.
	CustomEndpoint string `env:"EXAMTUTOR_CUSTOM_ENDPOINT"`
	CustomModel    string `env:"EXAMTUTOR_CUSTOM_MODEL" envDefault:"custom"`

	ExpandQuery bool `env:"EXAMTUTOR_EXPAND_QUERY" envDefault:"false"`
	Debug       bool `env:"EXAMTUTOR_DEBUG" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

// #endregion config
