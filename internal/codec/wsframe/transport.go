// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package wsframe

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	coretransport "github.com/tomtom215/asyncserver/internal/transport"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024

	sendBufferSize = 8
)

type decodeResult[Req any] struct {
	req Req
	err error
}

// transport implements transport.Transport over a *websocket.Conn, split
// into a readPump and writePump goroutine the same way
// internal/websocket.Client is, plus a token-bucket gate in TrySend that
// makes a slow or throttled peer visible as back-pressure instead of an
// ever-growing queue.
type transport[Req, Resp any] struct {
	conn    *websocket.Conn
	limiter *rate.Limiter

	decodeCh chan decodeResult[Req]
	sendCh   chan Resp
	wake     chan struct{}

	eof     atomic.Bool
	pending atomic.Int32

	mu       sync.Mutex
	writeErr error

	closeOnce sync.Once
}

func newTransport[Req, Resp any](conn *websocket.Conn, limiter *rate.Limiter) *transport[Req, Resp] {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	t := &transport[Req, Resp]{
		conn:     conn,
		limiter:  limiter,
		decodeCh: make(chan decodeResult[Req], 32),
		sendCh:   make(chan Resp, sendBufferSize),
		wake:     make(chan struct{}, 1),
	}
	go t.readPump()
	go t.writePump()
	return t
}

func (t *transport[Req, Resp]) signalWake() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// readPump decodes one JSON message per frame until the connection errors or
// closes. A close error carrying a normal-closure, going-away or
// abnormal-closure code is an expected close (gorilla reports the underlying
// TCP connection simply going away as an abnormal closure): it sets eof
// instead of pushing a terminal decodeResult, so TryDecode reports
// coretransport.ErrEndOfStream — not fatal — for the rest of the transport's
// life. Any other error (an unexpected close code, a malformed JSON frame, a
// read timeout) delivers one terminal, fatal decodeResult before the loop
// exits.
func (t *transport[Req, Resp]) readPump() {
	for {
		var req Req
		if err := t.conn.ReadJSON(&req); err != nil {
			_, isClose := err.(*websocket.CloseError)
			if isClose && !websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				t.eof.Store(true)
			} else {
				t.decodeCh <- decodeResult[Req]{err: fmt.Errorf("wsframe: read: %w", err)}
			}
			t.signalWake()
			return
		}
		t.decodeCh <- decodeResult[Req]{req: req}
		t.signalWake()
	}
}

func (t *transport[Req, Resp]) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case resp, ok := <-t.sendCh:
			if !ok {
				_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = t.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := t.conn.WriteJSON(resp)
			t.pending.Add(-1)
			if err != nil {
				t.mu.Lock()
				if t.writeErr == nil {
					t.writeErr = fmt.Errorf("wsframe: write: %w", err)
				}
				t.mu.Unlock()
			}
			t.signalWake()
		case <-ticker.C:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.mu.Lock()
				if t.writeErr == nil {
					t.writeErr = fmt.Errorf("wsframe: ping: %w", err)
				}
				t.mu.Unlock()
				t.signalWake()
				return
			}
		}
	}
}

func (t *transport[Req, Resp]) TryDecode() (Req, bool, error) {
	var zero Req
	select {
	case res := <-t.decodeCh:
		if res.err != nil {
			return zero, false, res.err
		}
		return res.req, true, nil
	default:
		if t.eof.Load() {
			return zero, false, coretransport.ErrEndOfStream
		}
		return zero, false, nil
	}
}

// TrySend reports not-ready, without touching sendCh, when the token bucket
// has nothing left — that is the back-pressure signal this codec exists to
// produce.
func (t *transport[Req, Resp]) TrySend(resp Resp) (bool, error) {
	if err := t.lastWriteErr(); err != nil {
		return false, err
	}
	if t.limiter != nil && !t.limiter.Allow() {
		return false, nil
	}
	select {
	case t.sendCh <- resp:
		t.pending.Add(1)
		return true, nil
	default:
		return false, nil
	}
}

func (t *transport[Req, Resp]) TryFlush() (bool, error) {
	if err := t.lastWriteErr(); err != nil {
		return false, err
	}
	return t.pending.Load() == 0, nil
}

func (t *transport[Req, Resp]) lastWriteErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writeErr
}

func (t *transport[Req, Resp]) Wake() <-chan struct{} { return t.wake }

func (t *transport[Req, Resp]) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.sendCh)
		err = t.conn.Close()
	})
	return err
}
