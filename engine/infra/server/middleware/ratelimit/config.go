package ratelimit

import (
	"fmt"
	"time"

	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/ulule/limiter/v3"
)

// Config represents rate limiting configuration for the login endpoint
type Config struct {
	// Login bounds credential attempts per client IP
	Login RateConfig `yaml:"login"`

	// Options
	Prefix   string `yaml:"prefix"`
	MaxRetry int    `yaml:"max_retry"`

	// Header configuration
	DisableHeaders bool `yaml:"disable_headers"`
}

// RateConfig represents a single rate limit configuration
type RateConfig struct {
	Period   time.Duration `yaml:"period"`
	Limit    int64         `yaml:"limit"`
	Disabled bool          `yaml:"disabled,omitempty"`
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() *Config {
	return &Config{
		Login: RateConfig{
			Limit:  10, // brute-force guard
			Period: time.Minute,
		},
		Prefix:   "defaultdesk:ratelimit:",
		MaxRetry: 3,
	}
}

// FromAppConfig maps the application settings onto the limiter config.
func FromAppConfig(cfg *config.Config) *Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	rl := cfg.RateLimit
	out.Login.Disabled = !rl.Enabled
	if rl.Login.Limit > 0 {
		out.Login.Limit = rl.Login.Limit
	}
	if rl.Login.Period > 0 {
		out.Login.Period = rl.Login.Period
	}
	if rl.Prefix != "" {
		out.Prefix = rl.Prefix
	}
	return out
}

// ToLimiterRate converts RateConfig to limiter.Rate
func (rc RateConfig) ToLimiterRate() limiter.Rate {
	return limiter.Rate{
		Period: rc.Period,
		Limit:  rc.Limit,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Login.Disabled {
		return nil
	}
	if c.Login.Limit <= 0 {
		return fmt.Errorf("login rate limit must be positive")
	}
	if c.Login.Period <= 0 {
		return fmt.Errorf("login rate period must be positive")
	}
	return nil
}
