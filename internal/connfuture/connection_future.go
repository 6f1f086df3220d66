// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package connfuture implements the first two phases of the server
// lifecycle: accepting the single connection this server will ever serve,
// and binding the shared codec to it to produce a framed transport.
package connfuture

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Accept resolves exactly once with the first connection ln yields, or
// fails if the listener is closed first (ErrNoConnections) or the accept
// call itself errors (ErrAccept). Canceling ctx closes the listener to
// unblock the pending Accept and returns ctx.Err().
//
// This is ConnectionFuture: a listening socket only ever gives up one
// connection to this server, by design — see the package doc on the
// server lifecycle for why accepting a second connection is out of scope.
func Accept(ctx context.Context, ln net.Listener) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}

	resultCh := make(chan result, 1)
	go func() {
		conn, err := ln.Accept()
		resultCh <- result{conn: conn, err: err}
	}()

	select {
	case r := <-resultCh:
		if r.err == nil {
			return r.conn, nil
		}
		if errors.Is(r.err, net.ErrClosed) {
			return nil, ErrNoConnections
		}
		return nil, fmt.Errorf("%w: %v", ErrAccept, r.err)
	case <-ctx.Done():
		_ = ln.Close()
		return nil, ctx.Err()
	}
}
