package config

import (
	"runtime"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultGatewayURL       = "wss://gateway.discord.gg"
	DefaultEncoding         = "json"
	DefaultGatewayVersion   = 10
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultBufferSize       = 64
	DefaultCredentialsPath  = "./tokens.txt"
	DefaultBrowser          = "Discord iOS"
	DefaultGameText         = "discord.gg/discord-developers"
	DefaultReportInterval   = 1 * time.Second
	DefaultMetricsPort      = 9090
	DefaultMetricsPath      = "/metrics"
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 4
	DefaultMinConns         = 1
	DefaultLogLevel         = "info"
)

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	// Gateway defaults
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = DefaultGatewayURL
	}
	if c.Gateway.Encoding == "" {
		c.Gateway.Encoding = DefaultEncoding
	}
	if c.Gateway.Version == 0 {
		c.Gateway.Version = DefaultGatewayVersion
	}
	if c.Gateway.HandshakeTimeout == 0 {
		c.Gateway.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Gateway.WriteTimeout == 0 {
		c.Gateway.WriteTimeout = DefaultWriteTimeout
	}
	if c.Gateway.BufferSize == 0 {
		c.Gateway.BufferSize = DefaultBufferSize
	}

	if c.Credentials.Path == "" {
		c.Credentials.Path = DefaultCredentialsPath
	}

	// Identity defaults
	if c.Identity.OS == "" {
		c.Identity.OS = runtime.GOOS
	}
	if c.Identity.Browser == "" {
		c.Identity.Browser = DefaultBrowser
	}
	if c.Identity.Device == "" {
		c.Identity.Device = c.Identity.OS + " Device"
	}

	// Presence defaults
	if c.Presence.Game.Name == "" {
		c.Presence.Game.Name = DefaultGameText
	}
	if c.Presence.Game.Details == "" {
		c.Presence.Game.Details = DefaultGameText
	}
	if c.Presence.Game.State == "" {
		c.Presence.Game.State = DefaultGameText
	}

	if c.Report.Interval == 0 {
		c.Report.Interval = DefaultReportInterval
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.History.Enabled() {
		applyDBDefaults(&c.History)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
