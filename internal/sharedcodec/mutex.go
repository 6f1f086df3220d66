// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package sharedcodec provides the reference-counted, mutex-protected handle
// a codec is shared through across the StartServer -> ListeningServer ->
// BoundConnectionFuture chain. Only BoundConnectionFuture ever takes the
// lock, and only for the duration of one BindTransport call.
package sharedcodec

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPoisoned is returned once a guarded call has panicked. Go's
// sync.Mutex doesn't poison itself the way Rust's std::sync::Mutex does, so
// Mutex reimplements that guarantee: a panic while the lock is held marks it
// permanently unusable rather than silently unlocking into undefined state.
var ErrPoisoned = errors.New("sharedcodec: mutex poisoned by a panic while locked")

// Mutex guards a value shared across goroutines that must never be used
// again after one of them panics mid-call.
type Mutex struct {
	mu       sync.Mutex
	poisoned bool
}

// Do runs fn with the lock held. If the lock is already poisoned, fn does
// not run and Do returns ErrPoisoned. If fn panics, the mutex is marked
// poisoned, the panic is converted into ErrPoisoned, and all future calls to
// Do fail the same way.
func (m *Mutex) Do(fn func() error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return ErrPoisoned
	}

	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			err = fmt.Errorf("%w: %v", ErrPoisoned, r)
		}
	}()

	return fn()
}

// Poisoned reports whether a prior call panicked while the lock was held.
func (m *Mutex) Poisoned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.poisoned
}
