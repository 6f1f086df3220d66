// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package linejson

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	json "github.com/goccy/go-json"

	coretransport "github.com/tomtom215/asyncserver/internal/transport"
)

// sendBufferSize bounds how many accepted-but-not-yet-written responses
// (writeLoop encodes each one as it writes it) TrySend can queue before it
// starts reporting back-pressure. It is what
// makes the back-pressure scenario reproducible end to end instead of only
// in a test double: write the peer slowly (or not at all) and TrySend will
// eventually report not-ready.
const sendBufferSize = 8

// transport implements transport.Transport over one net.Conn, grounded on
// internal/websocket/client.go's readPump/writePump split: a reader
// goroutine that only ever pushes into a channel, and a writer goroutine
// that only ever drains one, so the Try* surface this type exposes never
// itself blocks on the network.
type transport[Req, Resp any] struct {
	conn   net.Conn
	reader *bufio.Reader

	decodeCh chan decodeResult[Req]
	sendCh   chan Resp
	wake     chan struct{}

	eof     atomic.Bool
	pending atomic.Int32

	mu       sync.Mutex
	writeErr error

	closeOnce sync.Once
}

type decodeResult[Req any] struct {
	req Req
	err error
}

func newTransport[Req, Resp any](conn net.Conn) *transport[Req, Resp] {
	t := &transport[Req, Resp]{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		decodeCh: make(chan decodeResult[Req], 32),
		sendCh:   make(chan Resp, sendBufferSize),
		wake:     make(chan struct{}, 1),
	}
	go t.readLoop()
	go t.writeLoop()
	return t
}

func (t *transport[Req, Resp]) signalWake() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// readLoop decodes one JSON value per line until the connection errors or
// closes. A clean io.EOF sets eof instead of pushing a terminal
// decodeResult, so TryDecode reports transport.ErrEndOfStream — not fatal —
// for the rest of the transport's life; any other read or decode failure
// still delivers one terminal, fatal decodeResult before the loop exits.
func (t *transport[Req, Resp]) readLoop() {
	for {
		line, err := t.reader.ReadBytes('\n')
		if trimmed := bytes.TrimRight(line, "\r\n"); len(trimmed) > 0 {
			var req Req
			if decodeErr := json.Unmarshal(trimmed, &req); decodeErr != nil {
				t.decodeCh <- decodeResult[Req]{err: fmt.Errorf("linejson: decode: %w", decodeErr)}
				t.signalWake()
				return
			}
			t.decodeCh <- decodeResult[Req]{req: req}
			t.signalWake()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.eof.Store(true)
			} else {
				t.decodeCh <- decodeResult[Req]{err: fmt.Errorf("linejson: read: %w", err)}
			}
			t.signalWake()
			return
		}
	}
}

// writeLoop drains sendCh, marshaling and writing one line per response.
func (t *transport[Req, Resp]) writeLoop() {
	for resp := range t.sendCh {
		data, err := json.Marshal(resp)
		if err == nil {
			data = append(data, '\n')
			_, err = t.conn.Write(data)
		}
		t.pending.Add(-1)
		if err != nil {
			t.mu.Lock()
			if t.writeErr == nil {
				t.writeErr = fmt.Errorf("linejson: write: %w", err)
			}
			t.mu.Unlock()
		}
		t.signalWake()
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

func (t *transport[Req, Resp]) TrySend(resp Resp) (bool, error) {
	if err := t.lastWriteErr(); err != nil {
		return false, err
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
