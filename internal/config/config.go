// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the service reads at startup.
type Config struct {
	Port         int           `mapstructure:"PORT"`
	ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`

	// Empty DATABASE_URL selects the in-memory store.
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	// Empty REDIS_URL selects the in-process event broker.
	RedisURL string `mapstructure:"REDIS_URL"`

	RateRPS   float64 `mapstructure:"RATE_RPS"`
	RateBurst int     `mapstructure:"RATE_BURST"`

	WebhookMaxAttempts int           `mapstructure:"WEBHOOK_MAX_ATTEMPTS"`
	WebhookTimeout     time.Duration `mapstructure:"WEBHOOK_TIMEOUT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads the environment with defaults applied.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("PORT", 8080)
	v.SetDefault("READ_TIMEOUT", 10*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 20*time.Second)
	v.SetDefault("IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MIGRATIONS_DIR", "db/migrations")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_RPS", 50.0)
	v.SetDefault("RATE_BURST", 100)
	v.SetDefault("WEBHOOK_MAX_ATTEMPTS", 5)
	v.SetDefault("WEBHOOK_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.RateRPS <= 0 || c.RateBurst <= 0 {
		return Config{}, fmt.Errorf("rate limit must be positive (rps=%v burst=%d)", c.RateRPS, c.RateBurst)
	}
	return c, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
