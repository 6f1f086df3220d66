// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package connfuture

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/tomtom215/asyncserver/internal/sharedcodec"
	"github.com/tomtom215/asyncserver/internal/transport"
)

// BoundConnectionFuture accepts the server's one connection and applies the
// shared codec to it, producing a framed Transport.
//
// A poll-based design would model this as an explicit WaitingForConnection
// -> Binding state machine with a transient Processing sentinel used only
// during the state swap. Go's goroutines already suspend cooperatively at
// the accept and at BindTransport, so Wait collapses those two states into
// one sequential call: there is no external poll() that could observe the
// intermediate Processing state anyway.
type BoundConnectionFuture[Req, Resp any] struct {
	listener net.Listener
	codec    transport.Codec[Req, Resp]
	codecMu  *sharedcodec.Mutex
}

// New builds a BoundConnectionFuture for one listener, one codec, and the
// mutex the codec is shared through across phases.
func New[Req, Resp any](ln net.Listener, codec transport.Codec[Req, Resp], codecMu *sharedcodec.Mutex) *BoundConnectionFuture[Req, Resp] {
	return &BoundConnectionFuture[Req, Resp]{listener: ln, codec: codec, codecMu: codecMu}
}

// Wait blocks until a connection is accepted and bound, or ctx is canceled.
// It must be called at most once: the connection it resolves with is this
// server's only connection.
func (f *BoundConnectionFuture[Req, Resp]) Wait(ctx context.Context) (transport.Transport[Req, Resp], net.Conn, error) {
	conn, err := Accept(ctx, f.listener)
	if err != nil {
		return nil, nil, err
	}
	_ = f.listener.Close()

	var tr transport.Transport[Req, Resp]
	lockErr := f.codecMu.Do(func() error {
		var bindErr error
		tr, bindErr = f.codec.BindTransport(ctx, conn)
		return bindErr
	})

	switch {
	case lockErr == nil:
		return tr, conn, nil
	case errors.Is(lockErr, sharedcodec.ErrPoisoned):
		_ = conn.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrCodecLock, lockErr)
	default:
		_ = conn.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrBindTransport, lockErr)
	}
}
