// Package config provides configuration types and defaults for libralend.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration options for the lending demo.
type Config struct {
	// LoanPeriodDays is the default lending period applied when the demo
	// issues loans.
	LoanPeriodDays int `mapstructure:"loan_period_days"`

	// Tracing enables the stdout trace exporter.
	Tracing bool `mapstructure:"tracing"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		LoanPeriodDays: 14,
		Tracing:        false,
		LogLevel:       "info",
	}
}

// Load reads the config file (libralend.yaml) from path if given, falling
// back to the current directory, and merges it over the defaults. A missing
// file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("libralend")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	defaults := Default()
	v.SetDefault("loan_period_days", defaults.LoanPeriodDays)
	v.SetDefault("tracing", defaults.Tracing)
	v.SetDefault("log_level", defaults.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks configuration values for errors.
func (c Config) Validate() error {
	if c.LoanPeriodDays <= 0 {
		return fmt.Errorf("loan_period_days must be positive, got %d", c.LoanPeriodDays)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
