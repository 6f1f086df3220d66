// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package pump

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/tomtom215/asyncserver/internal/connfuture"
	"github.com/tomtom215/asyncserver/internal/sharedcodec"
	"github.com/tomtom215/asyncserver/internal/transport"
)

// StartServer holds everything needed to bind the listening socket: the
// address, the service factory (consumed exactly once), the codec shared
// across the rest of the lifecycle, and the observer passed down to
// whatever ActiveServer eventually gets built.
type StartServer[Req, Resp any] struct {
	addr     string
	codec    transport.Codec[Req, Resp]
	codecMu  *sharedcodec.Mutex
	observer Observer

	mu      sync.Mutex
	factory ServiceFactory[Req, Resp]
	polled  bool
}

// NewStartServer builds a StartServer for the given listen address, codec,
// and service factory. codecMu must be shared with every other StartServer
// built against the same codec instance — here there is exactly one.
func NewStartServer[Req, Resp any](addr string, codec transport.Codec[Req, Resp], codecMu *sharedcodec.Mutex, factory ServiceFactory[Req, Resp], observer Observer) *StartServer[Req, Resp] {
	return &StartServer[Req, Resp]{addr: addr, codec: codec, codecMu: codecMu, factory: factory, observer: observer}
}

// Wait binds the listener and emits a ListeningServer. Calling Wait a
// second time is an error — the socket has already been bound and the
// factory already consumed.
func (s *StartServer[Req, Resp]) Wait(ctx context.Context) (*ListeningServer[Req, Resp], error) {
	s.mu.Lock()
	if s.polled {
		s.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	s.polled = true
	factory := s.factory
	s.factory = nil
	s.mu.Unlock()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBindSocket, err)
	}

	bound := connfuture.New(ln, s.codec, s.codecMu)
	return NewListeningServer(bound, factory, s.observer)
}

// Shutdown consumes the factory (if Wait hasn't already), builds a
// throwaway service instance purely to force-stop it, and discards it. If
// Wait already consumed the factory there is nothing left to own at this
// phase — the outer AsyncServer will have already moved on to shutting down
// the ListeningServer instead.
func (s *StartServer[Req, Resp]) Shutdown() error {
	s.mu.Lock()
	factory := s.factory
	s.factory = nil
	s.mu.Unlock()

	if factory == nil {
		return nil
	}
	svc, err := factory()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceCreation, err)
	}
	if err := svc.ForceStop(); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceShutdown, err)
	}
	return nil
}
