package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/gateway-presence/internal/gateway"
)

// healthPath is served next to the metrics endpoint.
const healthPath = "/health"

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return errors.New("gateway.base_url is required")
	}
	if _, err := c.GatewayURL(); err != nil {
		return fmt.Errorf("gateway.base_url: %w", err)
	}
	if c.Gateway.Encoding != "json" {
		return fmt.Errorf("gateway.encoding must be json, got %q", c.Gateway.Encoding)
	}
	if c.Gateway.Version < 1 {
		return errors.New("gateway.version must be >= 1")
	}
	if c.Gateway.HandshakeTimeout <= 0 {
		return errors.New("gateway.handshake_timeout must be > 0")
	}
	if c.Gateway.WriteTimeout <= 0 {
		return errors.New("gateway.write_timeout must be > 0")
	}
	if c.Gateway.BufferSize < 1 {
		return errors.New("gateway.buffer_size must be >= 1")
	}

	if c.Credentials.Path == "" {
		return errors.New("credentials.path is required")
	}

	if c.Report.Interval <= 0 {
		return errors.New("report.interval must be > 0")
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	if c.Metrics.Enabled && c.Metrics.Path == healthPath {
		return fmt.Errorf("metrics.path cannot be %s, it is reserved for the health endpoint", healthPath)
	}

	if c.History.Enabled() {
		if err := c.History.validate("history"); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

// GatewayURL returns the full endpoint including encoding and version.
func (c *Config) GatewayURL() (string, error) {
	return gateway.URL(c.Gateway.BaseURL, c.Gateway.Encoding, c.Gateway.Version)
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
