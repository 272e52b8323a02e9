// Package config loads client configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the resolved client configuration.
type Config struct {
	// ServerURL is the base URL of the Spellbook API.
	ServerURL string `mapstructure:"server_url" validate:"required,url"`
	// Timeout bounds each HTTP request.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s,max=5m"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	// SessionDir overrides where credentials are persisted. Empty means the
	// XDG default.
	SessionDir string `mapstructure:"session_dir"`
	// UserAgent overrides the HTTP User-Agent header.
	UserAgent string `mapstructure:"user_agent"`
}

func setDefaults() {
	viper.SetDefault("server_url", "http://localhost:8000")
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("user_agent", "spellbook-go")
}

// Load reads the config file (if any), applies SPELLBOOK_* environment
// overrides, and validates the result. A missing config file is not an
// error; defaults and environment apply.
func Load() (*Config, error) {
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
