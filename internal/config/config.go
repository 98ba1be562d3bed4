package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Gateway     GatewayConfig     `yaml:"gateway"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Identity    IdentityConfig    `yaml:"identity"`
	Presence    PresenceConfig    `yaml:"presence"`
	Report      ReportConfig      `yaml:"report"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	History     DBConfig          `yaml:"history"`
	Log         LogConfig         `yaml:"log"`
}

// GatewayConfig holds the gateway endpoint and transport settings.
type GatewayConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Encoding         string        `yaml:"encoding"` // Only "json" is supported
	Version          int           `yaml:"version"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	BufferSize       int           `yaml:"buffer_size"`
}

// CredentialsConfig locates the token list.
type CredentialsConfig struct {
	Path string `yaml:"path"`
}

// IdentityConfig is the client properties block of the identify frame.
type IdentityConfig struct {
	OS      string `yaml:"os"`
	Browser string `yaml:"browser"`
	Device  string `yaml:"device"`
}

// PresenceConfig is the static part of the presence report.
type PresenceConfig struct {
	Game GameConfig `yaml:"game"`
	Seed int64      `yaml:"seed"` // 0 = time-based
}

// GameConfig is the display metadata embedded in the presence report.
type GameConfig struct {
	Name    string `yaml:"name"`
	Type    int    `yaml:"type"`
	Details string `yaml:"details"`
	State   string `yaml:"state"`
}

// ReportConfig controls the console summary.
type ReportConfig struct {
	Quiet    bool          `yaml:"quiet"`
	Interval time.Duration `yaml:"interval"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// DBConfig holds the optional Postgres session history connection.
// History is disabled when Host is empty.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a database is configured.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// SlogLevel converts Level to a slog.Level. Unknown values map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
