// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package linejson implements transport.Codec over a newline-delimited JSON
// stream: one JSON value per line, decoded and encoded with
// github.com/goccy/go-json, a drop-in replacement for encoding/json chosen
// for latency-sensitive (de)serialization.
package linejson

import (
	"context"
	"net"

	coretransport "github.com/tomtom215/asyncserver/internal/transport"
)

// Codec is the default codec cmd/server wires into its StartServer.
type Codec[Req, Resp any] struct{}

// New builds a line-delimited-JSON codec for the given request/response
// types.
func New[Req, Resp any]() Codec[Req, Resp] {
	return Codec[Req, Resp]{}
}

// BindTransport wraps conn with reader/writer goroutines that decode and
// encode one JSON value per line. It never blocks on I/O itself — the
// goroutines it starts do that — so it returns immediately.
func (Codec[Req, Resp]) BindTransport(_ context.Context, conn net.Conn) (coretransport.Transport[Req, Resp], error) {
	return newTransport[Req, Resp](conn), nil
}
