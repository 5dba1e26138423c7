package config

import (
	"time"
	_ "time/tzdata" // engagement timezones must resolve in minimal containers
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Review     ReviewConfig     `mapstructure:"review" validate:"required"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Session    SessionConfig    `mapstructure:"session" validate:"required"`
	Engagement EngagementConfig `mapstructure:"engagement" validate:"required"`
	BossRound  BossRoundConfig  `mapstructure:"boss_round" validate:"required"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains token verification settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// ClockSkew is the leeway applied to exp/nbf/iat checks.
	ClockSkew time.Duration `mapstructure:"clock_skew" validate:"gte=0"`
	// TokenLifetime applies only to tokens minted by the dev token command.
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

// ReviewConfig contains due-queue and rating settings.
type ReviewConfig struct {
	MaxQueueSize            int `mapstructure:"max_queue_size" validate:"gt=0"`
	BatchMax                int `mapstructure:"batch_max" validate:"gt=0"`
	AttentionLapseThreshold int `mapstructure:"attention_lapse_threshold" validate:"gt=0"`
	AttentionLimit          int `mapstructure:"attention_limit" validate:"gt=0"`
}

// MemoryConfig tunes the memory model. Zero values keep the model defaults.
type MemoryConfig struct {
	DueThreshold     float64 `mapstructure:"due_threshold" validate:"gte=0,lt=1"`
	OverdueAfterDays float64 `mapstructure:"overdue_after_days" validate:"gte=0"`
}

// SessionConfig contains review session settings.
type SessionConfig struct {
	InactivityBoundary time.Duration `mapstructure:"inactivity_boundary" validate:"gt=0"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
	SweeperEnabled     bool          `mapstructure:"sweeper_enabled"`
}

// EngagementConfig contains daily goal, streak and calendar settings.
type EngagementConfig struct {
	DailyTarget    int    `mapstructure:"daily_target" validate:"gt=0"`
	Timezone       string `mapstructure:"timezone" validate:"required,timezone"`
	InitialFreezes int    `mapstructure:"initial_freezes" validate:"gte=0"`
}

// Location resolves Timezone. Validation guarantees it loads.
func (c EngagementConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BossRoundConfig contains boss round settings.
type BossRoundConfig struct {
	Size      int           `mapstructure:"size" validate:"gt=0"`
	TimeLimit time.Duration `mapstructure:"time_limit" validate:"gt=0"`
}

// RateLimitConfig contains per-owner request limits. A zero rate disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}
