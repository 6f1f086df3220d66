// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package config defines the server's configuration shape and its
// defaults. Loading is layered defaults -> file -> environment, implemented
// in koanf.go in this package.
package config

import "time"

// Config is the top-level configuration for cmd/server.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ServerConfig controls the listen address and shutdown behavior of the
// single-connection server.
type ServerConfig struct {
	// ListenAddr is the TCP address StartServer binds, host:port form.
	ListenAddr string `koanf:"listen_addr"`
	// ShutdownGrace bounds how long the metrics HTTP endpoint's graceful
	// Shutdown may take once the supervisor tree is canceled.
	ShutdownGrace time.Duration `koanf:"shutdown_grace"`
}

// LoggingConfig controls internal/logging.Init.
type LoggingConfig struct {
	Level      string `koanf:"level"`
	JSONOutput bool   `koanf:"json_output"`
}

// MetricsConfig controls the HTTP listener that exposes Prometheus metrics.
type MetricsConfig struct {
	Enabled    bool   `koanf:"enabled"`
	ListenAddr string `koanf:"listen_addr"`
}

// Default returns the built-in defaults, the first and lowest-priority
// layer LoadWithKoanf applies.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:    "127.0.0.1:9000",
			ShutdownGrace: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			JSONOutput: true,
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: "127.0.0.1:9090",
		},
	}
}

// Validate reports the first configuration error found, mirroring
// cartographus's Config.Validate gate at the end of LoadWithKoanf.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return errServerListenAddrRequired
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return errMetricsListenAddrRequired
	}
	if c.Server.ShutdownGrace <= 0 {
		return errShutdownGraceMustBePositive
	}
	return nil
}
