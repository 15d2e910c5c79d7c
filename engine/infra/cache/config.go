package cache

import (
	"time"

	"github.com/compozy/defaultdesk/pkg/config"
)

type Config struct {
	URL          string
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration
}

// FromAppConfig maps the redis section of the application configuration.
func FromAppConfig(cfg *config.Config) *Config {
	r := cfg.Redis
	return &Config{
		URL:          r.URL,
		Host:         r.Host,
		Port:         r.Port,
		Password:     r.Password.Value(),
		DB:           r.DB,
		PoolSize:     r.PoolSize,
		DialTimeout:  r.DialTimeout,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
		PingTimeout:  r.PingTimeout,
	}
}
