// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package transport defines the framed-transport contract the active pump
// drives: a non-blocking decode/send/flush surface produced by applying a
// caller-supplied codec to a connected socket.
//
// "Non-blocking" here means what it would mean on a Rust future: a Try*
// method either has an answer right now or tells the caller to come back
// later (accepted=false / ok=false), it never blocks the calling goroutine
// waiting on I/O. Concrete implementations get this by running their own
// reader/writer goroutines and exposing channel-backed try-ops, the same
// split internal/websocket/client.go uses between readPump and writePump.
package transport

import (
	"context"
	"errors"
	"net"
)

// ErrEndOfStream is returned by TryDecode once the peer has cleanly closed
// its half of the connection (a clean io.EOF, or the WebSocket equivalent).
// It is not fatal: the pump merges it as made-progress (status.Active), the
// same way the original design's fused request stream turns a clean
// Ready(None) into Status::Active rather than an error, so that any
// in-flight completions and queued responses still drain and HasFinished
// still gets consulted before the pump decides it is done. A TryDecode
// error that is not ErrEndOfStream is always fatal.
var ErrEndOfStream = errors.New("transport: request stream ended")

// Transport is a framed transport: it decodes requests from, and encodes
// responses to, one connected socket. Owned exclusively by one ActiveServer.
type Transport[Req, Resp any] interface {
	// TryDecode returns the next decoded request if one is already
	// buffered. ok=false with a nil error means "nothing ready yet, try
	// again" (WouldBlock). ok=false wrapping ErrEndOfStream means the peer
	// closed its request stream cleanly — not fatal, see ErrEndOfStream.
	// Any other non-nil error is fatal.
	TryDecode() (req Req, ok bool, err error)

	// TrySend hands one response to the outbound path. accepted=false with
	// a nil error signals back-pressure: the caller must retry the same
	// response later. A non-nil error is fatal.
	TrySend(resp Resp) (accepted bool, err error)

	// TryFlush attempts to flush buffered output. done=false means the
	// flush is still in progress (WouldBlock); a non-nil error is fatal.
	TryFlush() (done bool, err error)

	// Wake returns a channel that receives a value whenever the transport's
	// internal state changed in a way that might make a previously
	// would-blocking Try* call succeed (a decode arrived, send capacity
	// freed up, a flush completed). It stands in for the runtime wakeups an
	// external reactor would otherwise deliver.
	Wake() <-chan struct{}

	// Close releases the underlying connection. Safe to call more than
	// once.
	Close() error
}

// Codec binds a caller-supplied protocol to a freshly accepted connection,
// producing the Transport the pump will drive for the rest of the
// connection's life. BindTransport may itself be long-running (e.g. a
// WebSocket upgrade handshake) and must respect ctx cancellation.
type Codec[Req, Resp any] interface {
	BindTransport(ctx context.Context, conn net.Conn) (Transport[Req, Resp], error)
}
