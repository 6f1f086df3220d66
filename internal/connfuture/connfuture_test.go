// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package connfuture

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/asyncserver/internal/sharedcodec"
	"github.com/tomtom215/asyncserver/internal/transport"
)

type stubTransport struct{}

func (stubTransport) TryDecode() (string, bool, error)     { return "", false, nil }
func (stubTransport) TrySend(string) (bool, error)          { return false, nil }
func (stubTransport) TryFlush() (bool, error)                { return true, nil }
func (stubTransport) Wake() <-chan struct{}                  { return nil }
func (stubTransport) Close() error                           { return nil }

type stubCodec struct {
	bindErr error
	panics  bool
}

func (c stubCodec) BindTransport(context.Context, net.Conn) (transport.Transport[string, string], error) {
	if c.panics {
		panic("codec exploded")
	}
	if c.bindErr != nil {
		return nil, c.bindErr
	}
	return stubTransport{}, nil
}

func TestAcceptResolvesOnce(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		c, dialErr := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, dialErr)
		_ = c.Close()
	}()

	conn, err := Accept(context.Background(), ln)
	require.NoError(t, err)
	defer conn.Close()
	assert.NotNil(t, conn)
}

func TestAcceptNoConnectionsOnClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	var acceptErr error
	go func() {
		_, acceptErr = Accept(context.Background(), ln)
		close(done)
	}()

	require.NoError(t, ln.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Accept did not return after listener closed")
	}
	assert.ErrorIs(t, acceptErr, ErrNoConnections)
}

func TestAcceptContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Accept(ctx, ln)
	assert.ErrorIs(t, err, context.Canceled)
}

func dialPair(t *testing.T) (net.Listener, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		c, dialErr := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, dialErr)
		t.Cleanup(func() { _ = c.Close() })
	}()
	return ln, nil
}

func TestBoundConnectionFutureSuccess(t *testing.T) {
	ln, _ := dialPair(t)
	defer ln.Close()

	var mu sharedcodec.Mutex
	f := New[string, string](ln, stubCodec{}, &mu)

	tr, conn, err := f.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conn)
	defer conn.Close()
	assert.NotNil(t, tr)
}

func TestBoundConnectionFutureBindError(t *testing.T) {
	ln, _ := dialPair(t)
	defer ln.Close()

	var mu sharedcodec.Mutex
	wantErr := errors.New("bad handshake")
	f := New[string, string](ln, stubCodec{bindErr: wantErr}, &mu)

	_, _, err := f.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBindTransport)
}

func TestBoundConnectionFuturePoisonedLock(t *testing.T) {
	ln, _ := dialPair(t)
	defer ln.Close()

	var mu sharedcodec.Mutex
	f := New[string, string](ln, stubCodec{panics: true}, &mu)

	_, _, err := f.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCodecLock)
	assert.True(t, mu.Poisoned())
}
