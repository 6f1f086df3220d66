// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package config

import "errors"

var (
	errServerListenAddrRequired    = errors.New("config: server.listen_addr must not be empty")
	errMetricsListenAddrRequired   = errors.New("config: metrics.listen_addr must not be empty when metrics are enabled")
	errShutdownGraceMustBePositive = errors.New("config: server.shutdown_grace must be positive")
)
