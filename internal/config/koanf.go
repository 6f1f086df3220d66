// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a YAML config file, in
// priority order. The first one found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/asyncserver/config.yaml",
	"/etc/asyncserver/config.yml",
}

// ConfigPathEnvVar overrides the search list with one explicit path.
const ConfigPathEnvVar = "ASYNCSERVER_CONFIG_PATH"

// LoadWithKoanf loads configuration with three layered sources, lowest
// priority first:
//  1. Defaults (Default()).
//  2. An optional YAML config file.
//  3. Environment variables prefixed ASYNCSERVER_, e.g.
//     ASYNCSERVER_SERVER_LISTEN_ADDR -> server.listen_addr.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("ASYNCSERVER_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envKoanfPaths maps an env var name (with the ASYNCSERVER_ prefix stripped
// by envTransformFunc, lower-cased) to its koanf path. A blind
// underscore-to-dot replace doesn't work here the same way it doesn't in the
// teacher's envTransformFunc: "listen_addr" itself contains an underscore
// that must survive, so each supported variable is named explicitly instead.
var envKoanfPaths = map[string]string{
	"server_listen_addr":    "server.listen_addr",
	"server_shutdown_grace": "server.shutdown_grace",
	"logging_level":         "logging.level",
	"logging_json_output":   "logging.json_output",
	"metrics_enabled":       "metrics.enabled",
	"metrics_listen_addr":   "metrics.listen_addr",
}

func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "ASYNCSERVER_"))
	if path, ok := envKoanfPaths[key]; ok {
		return path
	}
	return key
}
