// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package pump

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/asyncserver/internal/connfuture"
	"github.com/tomtom215/asyncserver/internal/service"
)

// ServiceFactory builds one service instance. ListeningServer invokes it
// eagerly at construction time: lazy relative to the connection (no service
// exists until a ListeningServer is created for it), eager relative to the
// ListeningServer itself (the factory runs before the connection arrives,
// not when it does).
type ServiceFactory[Req, Resp any] func() (service.Service[Req, Resp], error)

// ListeningServer owns the pending BoundConnectionFuture and the service
// instance until both the connection and its transport are ready, at which
// point it hands both to a freshly built ActiveServer.
type ListeningServer[Req, Resp any] struct {
	bound    *connfuture.BoundConnectionFuture[Req, Resp]
	observer Observer

	mu      sync.Mutex
	svc     service.Service[Req, Resp]
	emitted bool
}

// NewListeningServer invokes factory immediately and wraps the result with
// the pending connection.
func NewListeningServer[Req, Resp any](bound *connfuture.BoundConnectionFuture[Req, Resp], factory ServiceFactory[Req, Resp], observer Observer) (*ListeningServer[Req, Resp], error) {
	svc, err := factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceCreation, err)
	}
	return &ListeningServer[Req, Resp]{bound: bound, svc: svc, observer: observer}, nil
}

// Wait blocks until the connection is accepted and framed, then emits an
// ActiveServer owning both the transport and the service. Calling Wait
// again after it has emitted is an error.
func (l *ListeningServer[Req, Resp]) Wait(ctx context.Context) (*ActiveServer[Req, Resp], error) {
	l.mu.Lock()
	if l.emitted {
		l.mu.Unlock()
		return nil, ErrAlreadyEmitted
	}
	l.mu.Unlock()

	tr, _, err := l.bound.Wait(ctx)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.emitted {
		return nil, ErrAlreadyEmitted
	}
	svc := l.svc
	l.svc = nil
	l.emitted = true

	opts := []Option[Req, Resp]{}
	if l.observer != nil {
		opts = append(opts, WithObserver[Req, Resp](l.observer))
	}
	return New(tr, svc, opts...), nil
}

// Shutdown takes ownership of the still-waiting service out of this phase
// and force-stops it. Once Wait has emitted the ActiveServer, Shutdown has
// nothing left to own here and reports ErrAlreadyEmitted — by that point
// the outer AsyncServer has already moved to the Active phase.
func (l *ListeningServer[Req, Resp]) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.emitted {
		return ErrAlreadyEmitted
	}
	svc := l.svc
	l.svc = nil
	if svc == nil {
		return nil
	}
	if err := svc.ForceStop(); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceShutdown, err)
	}
	return nil
}
