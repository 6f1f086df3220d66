// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package wsframe implements transport.Codec over a WebSocket connection
// (github.com/gorilla/websocket), one JSON message per WebSocket frame. It
// adds a token-bucket send limiter (golang.org/x/time/rate) so a connection
// whose downstream consumer is slow shows up as TrySend back-pressure
// instead of an unbounded in-process queue.
package wsframe

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	coretransport "github.com/tomtom215/asyncserver/internal/transport"
)

// Codec upgrades an already-accepted net.Conn to a WebSocket connection and
// rate-limits outbound frames on it.
type Codec[Req, Resp any] struct {
	upgrader websocket.Upgrader
	limit    rate.Limit
	burst    int
}

// New builds a WebSocket codec whose TrySend refuses new frames faster than
// sendsPerSecond, with up to burst frames allowed back to back. A
// sendsPerSecond of rate.Inf disables the limiter.
func New[Req, Resp any](sendsPerSecond rate.Limit, burst int) Codec[Req, Resp] {
	return Codec[Req, Resp]{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		limit: sendsPerSecond,
		burst: burst,
	}
}

// hijackResponseWriter adapts an already-accepted net.Conn, whose HTTP
// upgrade request has already been read off it, into the http.ResponseWriter
// shape websocket.Upgrader.Upgrade needs. AsyncServer hands codecs a raw
// net.Conn rather than routing through net/http's server, so BindTransport
// has to perform the HTTP half of the handshake itself before gorilla can
// take over framing.
type hijackResponseWriter struct {
	conn       net.Conn
	rw         *bufio.ReadWriter
	header     http.Header
	statusCode int
}

func (w *hijackResponseWriter) Header() http.Header { return w.header }

func (w *hijackResponseWriter) Write(b []byte) (int, error) {
	n, err := w.rw.Write(b)
	if err == nil {
		err = w.rw.Flush()
	}
	return n, err
}

func (w *hijackResponseWriter) WriteHeader(statusCode int) { w.statusCode = statusCode }

func (w *hijackResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.conn, w.rw, nil
}

// BindTransport reads the WebSocket upgrade request off conn, completes the
// handshake, and returns a Transport backed by the resulting frame stream.
// Canceling ctx during the handshake forces conn's deadline so the pending
// read or write returns, and BindTransport then fails with ctx.Err().
func (c Codec[Req, Resp]) BindTransport(ctx context.Context, conn net.Conn) (coretransport.Transport[Req, Resp], error) {
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })

	reader := bufio.NewReader(conn)
	req, err := http.ReadRequest(reader)
	if err != nil {
		if !stop() {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("wsframe: read handshake request: %w", err)
	}

	rw := &hijackResponseWriter{
		conn:   conn,
		rw:     bufio.NewReadWriter(reader, bufio.NewWriter(conn)),
		header: make(http.Header),
	}

	wsConn, err := c.upgrader.Upgrade(rw, req, nil)
	if !stop() {
		if err == nil {
			_ = wsConn.Close()
		}
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("wsframe: upgrade: %w", err)
	}

	limiter := rate.NewLimiter(c.limit, c.burst)
	return newTransport[Req, Resp](wsConn, limiter), nil
}
