package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "RECALL"

// defaults lists every key with its default value. Keys without a sensible
// default (database.url, auth.jwt_secret) are bound to the environment only.
var defaults = map[string]any{
	"server.port":             8080,
	"server.log_level":        "info",
	"server.log_format":       "json",
	"server.shutdown_timeout": 15 * time.Second,

	"database.max_open_conns":    25,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": 5 * time.Minute,

	"auth.clock_skew":     30 * time.Second,
	"auth.token_lifetime": 24 * time.Hour,

	"review.max_queue_size":            25,
	"review.batch_max":                 10,
	"review.attention_lapse_threshold": 3,
	"review.attention_limit":           20,

	"memory.due_threshold":      0.9,
	"memory.overdue_after_days": 7.0,

	"session.inactivity_boundary": 2 * time.Hour,
	"session.sweep_interval":      15 * time.Minute,
	"session.sweeper_enabled":     true,

	"engagement.daily_target":    10,
	"engagement.timezone":        "UTC",
	"engagement.initial_freezes": 1,

	"boss_round.size":       5,
	"boss_round.time_limit": 90 * time.Second,

	"rate_limit.requests_per_second": 10.0,
	"rate_limit.burst":               20,
}

// Load reads configuration from the environment and, if present, a
// config.yaml in the working directory or ./config. Environment variables
// take precedence over file values.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is like Load but reads the config file at path when path is not empty.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("auth.jwt_secret"); err != nil {
		return nil, fmt.Errorf("failed to bind auth.jwt_secret: %w", err)
	}
	// DATABASE_URL is honored as a fallback for hosted platforms.
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind database.url: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
