// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package server implements the outer AsyncServer lifecycle: the tagged
// union of phases (Binding, Listening, Active, their cancelled/disconnecting
// shutdown counterparts, and the terminal Dead) that ties the three
// pump.StartServer / pump.ListeningServer / pump.ActiveServer phases into
// one object with serve/shutdown semantics.
//
// The phase-transition guard here is grounded on
// other_examples' serverbase.Base: an atomic state value for lock-free reads
// plus a mutex around the transitions themselves. That example drives a
// single Created->Starting->Running->Stopping->Stopped axis with
// CompareAndSwap loops; AsyncServer's axis is longer (seven phases, two of
// them terminal-ish shutdown branches) so transitions are guarded by a plain
// mutex instead of lock-free CAS, but the atomic field for Phase() is kept
// for the same reason serverbase keeps one: callers can read it from any
// goroutine without contending with an in-progress transition.
package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/asyncserver/internal/pump"
	"github.com/tomtom215/asyncserver/internal/sharedcodec"
	"github.com/tomtom215/asyncserver/internal/transport"
)

// AsyncServer is the top-level handle applications hold: bind, accept,
// pump, and cooperative shutdown across all three phases.
//
// The reference design expresses Binding/Listening/Active as three poll()
// implementations an external reactor drives to Ready/NotReady/Err. Go's
// StartServer.Wait and ListeningServer.Wait already block on ctx instead of
// returning NotReady, so Serve collapses the outer "recursively poll on
// phase transition" loop into a sequential run through the three blocking
// calls — there is no separate reactor to hand NotReady back to.
type AsyncServer[Req, Resp any] struct {
	phaseAtomic atomic.Int32

	mu        sync.Mutex
	phase     Phase
	starting  *pump.StartServer[Req, Resp]
	listening *pump.ListeningServer[Req, Resp]
	active    *pump.ActiveServer[Req, Resp]

	serving    atomic.Bool
	cancelLive context.CancelFunc
}

// New builds an AsyncServer in PhaseBinding, ready for Serve. codecMu must be
// exclusive to this server instance's codec handle.
func New[Req, Resp any](addr string, codec transport.Codec[Req, Resp], codecMu *sharedcodec.Mutex, factory pump.ServiceFactory[Req, Resp], observer pump.Observer) *AsyncServer[Req, Resp] {
	s := &AsyncServer[Req, Resp]{
		phase:    PhaseBinding,
		starting: pump.NewStartServer(addr, codec, codecMu, factory, observer),
	}
	s.phaseAtomic.Store(int32(PhaseBinding))
	return s
}

// Phase reports the current lifecycle phase without blocking on any
// in-progress transition.
func (s *AsyncServer[Req, Resp]) Phase() Phase {
	return Phase(s.phaseAtomic.Load())
}

func (s *AsyncServer[Req, Resp]) setPhase(p Phase) {
	s.phase = p
	s.phaseAtomic.Store(int32(p))
}

// Serve runs the server to completion: bind, accept the one connection,
// pump requests and responses, and return once the service finishes, the
// connection fails, or Shutdown cuts the run short. It blocks for the
// lifetime of the connection and must be called at most once.
func (s *AsyncServer[Req, Resp]) Serve(ctx context.Context) error {
	if !s.serving.CompareAndSwap(false, true) {
		if s.Phase() == PhaseDead {
			return ErrServerWasShutDown
		}
		return ErrAlreadyServing
	}

	liveCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancelLive = cancel
	s.mu.Unlock()
	defer cancel()

	ls, err := s.starting.Wait(liveCtx)
	if err != nil {
		return s.finishBindingOrListening(err)
	}
	s.mu.Lock()
	if s.phase == PhaseBindCancelled {
		// Shutdown raced with a Wait that was already past the point
		// ctx cancellation could reach: unwind what it just produced
		// instead of clobbering the cancelled phase back to Listening.
		s.mu.Unlock()
		_ = ls.Shutdown()
		return ErrShuttingDown
	}
	s.listening = ls
	s.setPhase(PhaseListening)
	s.mu.Unlock()

	as, err := ls.Wait(liveCtx)
	if err != nil {
		return s.finishBindingOrListening(err)
	}
	s.mu.Lock()
	if s.phase == PhaseListenCancelled {
		s.mu.Unlock()
		_ = as.Shutdown()
		return ErrShuttingDown
	}
	s.active = as
	s.setPhase(PhaseActive)
	s.mu.Unlock()

	err = as.Run(liveCtx)
	return s.finishActive(err)
}

// ServeAsync starts Serve in its own goroutine and returns immediately with
// a channel that receives Serve's eventual result exactly once.
func (s *AsyncServer[Req, Resp]) ServeAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	return done
}

// finishBindingOrListening converts a failed or canceled Wait into the right
// terminal outcome: a shutdown-in-progress cancellation moves to the
// matching *Cancelled phase and is reported by Shutdown, not Serve; any
// other error is fatal and moves straight to Dead.
func (s *AsyncServer[Req, Resp]) finishBindingOrListening(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseBindCancelled || s.phase == PhaseListenCancelled {
		// Shutdown already performed the transition; Serve just unwound.
		return ErrShuttingDown
	}
	s.setPhase(PhaseDead)
	return err
}

func (s *AsyncServer[Req, Resp]) finishActive(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseDisconnecting {
		return ErrShuttingDown
	}
	s.setPhase(PhaseDead)
	return err
}

// Shutdown requests cooperative termination of whichever phase is current.
// It invokes that phase's own shutdown operation, then:
//   - if the phase's shutdown itself failed, the server moves straight to
//     Dead and that error is returned;
//   - otherwise the phase moves to its cancelled/disconnecting counterpart,
//     the in-flight Serve call is unblocked via context cancellation, and
//     ErrShuttingDown is returned to signal the caller that unwinding is
//     still in progress (Serve's return value carries the final outcome).
//
// Calling Shutdown again while already unwinding, or after Dead, is
// idempotent.
func (s *AsyncServer[Req, Resp]) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseDead:
		return nil

	case PhaseBindCancelled, PhaseListenCancelled, PhaseDisconnecting:
		return ErrShuttingDown

	case PhaseBinding:
		err := s.starting.Shutdown()
		s.cancelIfLive()
		if err != nil {
			s.setPhase(PhaseDead)
			return fmt.Errorf("server: bind-phase shutdown failed: %w", err)
		}
		s.setPhase(PhaseBindCancelled)
		return ErrShuttingDown

	case PhaseListening:
		err := s.listening.Shutdown()
		s.cancelIfLive()
		if err != nil {
			s.setPhase(PhaseDead)
			return fmt.Errorf("server: listen-phase shutdown failed: %w", err)
		}
		s.setPhase(PhaseListenCancelled)
		return ErrShuttingDown

	case PhaseActive:
		err := s.active.Shutdown()
		s.cancelIfLive()
		if err != nil {
			s.setPhase(PhaseDead)
			return fmt.Errorf("server: active-phase shutdown failed: %w", err)
		}
		s.setPhase(PhaseDisconnecting)
		return ErrShuttingDown

	default:
		return fmt.Errorf("server: shutdown called in unknown phase %v", s.phase)
	}
}

func (s *AsyncServer[Req, Resp]) cancelIfLive() {
	if s.cancelLive != nil {
		s.cancelLive()
	}
}
