// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package pump

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/asyncserver/internal/service"
	"github.com/tomtom215/asyncserver/internal/transport"
)

type decodeItem struct {
	req string
	err error
}

// fakeTransport is a synchronous, single-goroutine-safe stand-in for a real
// framed transport: TryDecode/TrySend/TryFlush are all driven directly by
// whichever goroutine calls Poll, with no I/O goroutines of its own, which
// keeps the back-pressure and decode-error scenarios fully deterministic.
type fakeTransport struct {
	mu          sync.Mutex
	decodeQueue []decodeItem
	sendFn      func(resp string) (bool, error)
	sent        []string
	flushErr    error
	wake        chan struct{}
	closed      bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{wake: make(chan struct{}, 1)}
}

func (f *fakeTransport) TryDecode() (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.decodeQueue) == 0 {
		return "", false, nil
	}
	item := f.decodeQueue[0]
	f.decodeQueue = f.decodeQueue[1:]
	if item.err != nil {
		return "", false, item.err
	}
	return item.req, true, nil
}

func (f *fakeTransport) TrySend(resp string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendFn == nil {
		f.sent = append(f.sent, resp)
		return true, nil
	}
	accepted, err := f.sendFn(resp)
	if accepted && err == nil {
		f.sent = append(f.sent, resp)
	}
	return accepted, err
}

func (f *fakeTransport) TryFlush() (bool, error) { return true, f.flushErr }
func (f *fakeTransport) Wake() <-chan struct{}   { return f.wake }
func (f *fakeTransport) Close() error            { f.closed = true; return nil }

// countingEchoService resolves every call immediately with "PONG" and
// reports itself finished after the first call has resolved.
type countingEchoService struct {
	resolved int
}

func (s *countingEchoService) Call(context.Context, string) <-chan service.Result[string] {
	ch := make(chan service.Result[string], 1)
	ch <- service.Result[string]{Value: "PONG"}
	s.resolved++
	return ch
}
func (s *countingEchoService) HasFinished() (bool, error) { return s.resolved > 0, nil }
func (s *countingEchoService) ForceStop() error           { return nil }

func TestPumpEchoImmediate(t *testing.T) {
	tr := newFakeTransport()
	tr.decodeQueue = []decodeItem{{req: "PING"}}
	svc := &countingEchoService{}

	a := New[string, string](tr, svc)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Run(ctx))
	assert.Equal(t, []string{"PONG"}, tr.sent)
}

// echoEveryCall resolves every call immediately, in request order.
type echoEveryCall struct{}

func (echoEveryCall) Call(_ context.Context, req string) <-chan service.Result[string] {
	ch := make(chan service.Result[string], 1)
	ch <- service.Result[string]{Value: req}
	return ch
}
func (echoEveryCall) HasFinished() (bool, error) { return false, nil }
func (echoEveryCall) ForceStop() error           { return nil }

func TestPumpBackpressureReQueuesAtHead(t *testing.T) {
	tr := newFakeTransport()
	tr.decodeQueue = []decodeItem{{req: "R1"}, {req: "R2"}, {req: "R3"}, {req: "R4"}}

	odd := true
	tr.sendFn = func(resp string) (bool, error) {
		accept := odd
		odd = !odd
		return accept, nil
	}

	a := New[string, string](tr, echoEveryCall{})

	// Requests resolve synchronously (buffered channel already filled), but
	// the pump still fans them through a forwarding goroutine, so drive
	// with Poll+Run's wake select rather than asserting a literal
	// per-call sequence.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 4; i++ {
		done, err := a.Poll(ctx)
		require.NoError(t, err)
		if done {
			break
		}
		// Let the forwarding goroutines catch up, mirroring what Run's
		// select-on-completions does, without pulling Run's full reactor
		// loop into this assertion-heavy test.
		select {
		case res := <-a.completions:
			a.handleCompletion(res)
		case <-time.After(500 * time.Millisecond):
		}
	}

	for len(tr.sent) < 4 {
		done, err := a.Poll(ctx)
		require.NoError(t, err)
		if done {
			break
		}
		select {
		case res := <-a.completions:
			a.handleCompletion(res)
		case <-time.After(500 * time.Millisecond):
		}
	}

	assert.Equal(t, []string{"R1", "R2", "R3", "R4"}, tr.sent, "back-pressure must preserve FIFO order")
}

func TestPumpOutOfOrderCompletionsPreserveSendOrder(t *testing.T) {
	tr := newFakeTransport()
	svc := &blockingService{}
	a := New[string, string](tr, svc)

	// Push completions directly, bypassing dispatch's goroutine fan-in, to
	// pin down the exact arrival order the pump must preserve on the wire:
	// C, A, B — not request order A, B, C.
	a.inFlight = 3
	a.completions <- service.Result[string]{Value: "C"}
	a.completions <- service.Result[string]{Value: "A"}
	a.completions <- service.Result[string]{Value: "B"}

	svc.finished = true

	// The transport has nothing to decode, so every cycle would-blocks and
	// each Poll collects a single completion: draining all three takes three.
	ctx := context.Background()
	var done bool
	var err error
	for i := 0; i < 3 && !done; i++ {
		done, err = a.Poll(ctx)
		require.NoError(t, err)
	}
	assert.True(t, done)
	assert.Equal(t, []string{"C", "A", "B"}, tr.sent)
}

type blockingService struct{ finished bool }

func (s *blockingService) Call(context.Context, string) <-chan service.Result[string] {
	panic("not used in this test")
}
func (s *blockingService) HasFinished() (bool, error) { return s.finished, nil }
func (s *blockingService) ForceStop() error           { return nil }

func TestPumpDecodeErrorIsFatal(t *testing.T) {
	tr := newFakeTransport()
	boom := errors.New("truncated frame")
	tr.decodeQueue = []decodeItem{{req: "R1"}, {req: "R2"}, {err: boom}}

	a := New[string, string](tr, echoEveryCall{})

	var done bool
	var err error
	for i := 0; i < 5 && !done && err == nil; i++ {
		done, err = a.Poll(context.Background())
		if err == nil && !done {
			select {
			case res := <-a.completions:
				a.handleCompletion(res)
			case <-time.After(200 * time.Millisecond):
			}
		}
	}

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
	assert.False(t, done)
}

func TestPumpEndOfStreamDrainsInFlightBeforeFinishing(t *testing.T) {
	tr := newFakeTransport()
	tr.decodeQueue = []decodeItem{{req: "PING"}, {err: transport.ErrEndOfStream}}
	svc := &countingEchoService{}

	a := New[string, string](tr, svc)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, a.Run(ctx), "a clean end-of-stream must not surface as a fatal error")
	assert.Equal(t, []string{"PONG"}, tr.sent, "the in-flight completion must still be sent after end-of-stream")
}

func TestPumpEndOfStreamWithNothingInFlightIsNotFatal(t *testing.T) {
	tr := newFakeTransport()
	tr.decodeQueue = []decodeItem{{err: transport.ErrEndOfStream}}
	svc := &blockingService{finished: true}

	a := New[string, string](tr, svc)

	done, err := a.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestPumpCompletionCheckDeferredUntilQueuesEmpty(t *testing.T) {
	tr := newFakeTransport()
	svc := &blockingService{finished: true}
	a := New[string, string](tr, svc)

	a.inFlight = 1 // one call still outstanding

	done, err := a.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, done, "HasFinished must not be consulted while a call is in flight")

	a.inFlight = 0
	done, err = a.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
}

type forceStopTrackingService struct{ stopped bool }

func (s *forceStopTrackingService) Call(context.Context, string) <-chan service.Result[string] {
	panic("not used")
}
func (s *forceStopTrackingService) HasFinished() (bool, error) { return false, nil }
func (s *forceStopTrackingService) ForceStop() error            { s.stopped = true; return nil }

func TestActiveServerShutdownCallsForceStop(t *testing.T) {
	svc := &forceStopTrackingService{}
	a := New[string, string](newFakeTransport(), svc)

	require.NoError(t, a.Shutdown())
	assert.True(t, svc.stopped)
}
