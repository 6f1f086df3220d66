// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package echoservice

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/asyncserver/internal/service"
)

// ErrStopped is returned by Call once ForceStop has been invoked.
var ErrStopped = errors.New("echoservice: out-of-order service stopped")

// OutOfOrder dispatches each request onto its own goroutine under a
// semaphore.Weighted concurrency bound, the same pattern
// golang.org/x/sync/semaphore gives the worker pool at
// _examples/other_examples/fc80170c_abcxyz-pkg__workerpool-workerpool.go.go —
// adapted here so each call gets its own completion channel immediately
// (service.Service.Call's contract) instead of that package's batched
// Do/Done model. A per-request jittered delay makes completion order
// visibly independent of request order, demonstrating the pump's
// out-of-order completion handling.
type OutOfOrder struct {
	sem *semaphore.Weighted

	mu       sync.Mutex
	inFlight int
	stopped  bool
}

// NewOutOfOrder bounds concurrent in-flight calls to maxConcurrent.
func NewOutOfOrder(maxConcurrent int64) *OutOfOrder {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &OutOfOrder{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Call acquires a concurrency slot, sleeps a jittered delay to simulate
// variable work, and resolves with the echoed text. Acquisition blocks past
// the documented non-blocking contract only when the pool is saturated.
func (s *OutOfOrder) Call(ctx context.Context, req Message) <-chan service.Result[Message] {
	out := make(chan service.Result[Message], 1)

	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		out <- service.Result[Message]{Err: ErrStopped}
		return out
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		out <- service.Result[Message]{Err: err}
		return out
	}

	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	go func() {
		defer s.sem.Release(1)
		defer func() {
			s.mu.Lock()
			s.inFlight--
			s.mu.Unlock()
		}()

		delay := time.Duration(rand.IntN(20)) * time.Millisecond
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			out <- service.Result[Message]{Err: ctx.Err()}
			return
		}
		out <- service.Result[Message]{Value: Message{Text: req.Text}}
	}()

	return out
}

// HasFinished reports true once ForceStop has been called and every
// in-flight call has resolved.
func (s *OutOfOrder) HasFinished() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped && s.inFlight == 0, nil
}

// ForceStop is idempotent: it marks the service stopped so future Call
// invocations fail fast, without touching calls already in flight.
func (s *OutOfOrder) ForceStop() error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	return nil
}
