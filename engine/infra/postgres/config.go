package postgres

import (
	"fmt"
	"net/url"
	"time"

	"github.com/compozy/defaultdesk/pkg/config"
)

// Config holds PostgreSQL connection settings for the driver.
// Prefer providing a DSN via ConnString. When empty, a DSN will be
// synthesized from the individual fields.
type Config struct {
	ConnString string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string

	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	PingTimeout        time.Duration
	HealthCheckTimeout time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	// ConnectRetries is how many extra attempts NewStore makes while the
	// database is still coming up.
	ConnectRetries uint64
}

// DSN returns the connection string used for both pgxpool and goose.
func (c *Config) DSN() string {
	if c.ConnString != "" {
		return c.ConnString
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// FromAppConfig maps the database section of the application configuration.
func FromAppConfig(cfg *config.Config) *Config {
	db := cfg.Database
	return &Config{
		ConnString:      db.ConnString,
		Host:            db.Host,
		Port:            db.Port,
		User:            db.User,
		Password:        db.Password.Value(),
		DBName:          db.DBName,
		SSLMode:         db.SSLMode,
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxLifetime: db.ConnMaxLifetime,
		ConnMaxIdleTime: db.ConnMaxIdleTime,
		PingTimeout:     db.PingTimeout,
		ConnectRetries:  db.ConnectRetries,
	}
}
