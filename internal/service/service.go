// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package service defines the FiniteService contract the active pump
// dispatches requests to: a request/response service that can additionally
// report when it has no more work and be force-stopped.
package service

import "context"

// Result is what a dispatched call eventually resolves to: either a
// response or a fatal service error, never both.
type Result[Resp any] struct {
	Value Resp
	Err   error
}

// Service is the FiniteService contract. Implementations are owned
// exclusively by one ActiveServer at a time.
//
// Call must not block past the point of scheduling the work; it returns a
// channel that will receive exactly one Result once the request resolves.
// Completions may arrive in any order relative to other outstanding calls.
//
// HasFinished is queried only when the pump has no in-flight completions and
// no queued responses left; false keeps the pump active, true stops it.
//
// ForceStop is an idempotent, best-effort termination signal. Once it
// returns without error the pump treats the service as done.
type Service[Req, Resp any] interface {
	Call(ctx context.Context, req Req) <-chan Result[Resp]
	HasFinished() (bool, error)
	ForceStop() error
}

// Func adapts a synchronous handler function into a Service for the common
// case where the response is always computed without needing to track
// separate in-flight state. A Func never reports itself finished — callers
// that need a real termination condition should implement Service directly
// instead.
type Func[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Call implements Service by running fn on its own goroutine and delivering
// its result over a buffered channel.
func (fn Func[Req, Resp]) Call(ctx context.Context, req Req) <-chan Result[Resp] {
	out := make(chan Result[Resp], 1)
	go func() {
		val, err := fn(ctx, req)
		out <- Result[Resp]{Value: val, Err: err}
	}()
	return out
}

// HasFinished always reports false: a bare Func never decides to stop on its
// own, so a pump serving it ends only on a fatal error, a Shutdown, or
// cancellation; the peer closing the connection does not end it.
func (fn Func[Req, Resp]) HasFinished() (bool, error) { return false, nil }

// ForceStop is a no-op: Func holds no resources to release.
func (fn Func[Req, Resp]) ForceStop() error { return nil }
