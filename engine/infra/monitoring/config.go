package monitoring

import (
	"fmt"
	"strings"

	"github.com/compozy/defaultdesk/pkg/config"
)

// Config holds configuration for monitoring service
type Config struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path"    yaml:"path"    mapstructure:"path"`
}

// DefaultConfig returns default monitoring configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled: false,
		Path:    "/metrics",
	}
}

// FromAppConfig lifts the monitoring section out of the application config.
func FromAppConfig(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	out := &Config{Enabled: cfg.Monitoring.Enabled, Path: cfg.Monitoring.Path}
	if out.Path == "" {
		out.Path = DefaultConfig().Path
	}
	return out
}

// Validate validates the monitoring configuration
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("monitoring path cannot be empty")
	}
	if c.Path[0] != '/' {
		return fmt.Errorf("monitoring path must start with '/': got %s", c.Path)
	}
	// The exporter must not shadow a resource route.
	for _, reserved := range reservedPrefixes {
		if c.Path == reserved || strings.HasPrefix(c.Path, reserved+"/") {
			return fmt.Errorf("monitoring path cannot be under %s", reserved)
		}
	}
	if strings.ContainsRune(c.Path, '?') {
		return fmt.Errorf("monitoring path cannot contain query parameters")
	}
	return nil
}

var reservedPrefixes = []string{
	"/auth",
	"/users",
	"/customers",
	"/reasons",
	"/applications",
	"/notifications",
	"/stats",
	"/audit-logs",
	"/files",
}
