// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package supervisor

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/asyncserver/internal/server"
)

// AsyncServerRunner is the subset of *server.AsyncServer this package
// supervises: a blocking Serve call (the name for suture's log lines is
// given to NewService separately).
// Defined as an interface so this package does not import internal/server
// generically over Req/Resp — cmd/server wires the concrete type.
type AsyncServerRunner interface {
	Serve(ctx context.Context) error
}

// Service adapts an AsyncServerRunner into a suture.Service. AsyncServer.Serve
// already blocks on ctx and returns once shutdown settles, so this adapter
// only needs to add a name for logging and translate a clean completion into
// the sentinel suture uses to mean "do not restart this".
type Service struct {
	runner AsyncServerRunner
	name   string
}

// NewService wraps runner under name for supervision.
func NewService(runner AsyncServerRunner, name string) *Service {
	return &Service{runner: runner, name: name}
}

// Serve implements suture.Service. The server runs exactly once: a nil
// return (the service finished) or ErrShuttingDown (a caller-requested
// Shutdown unwound cleanly) both mean the run ended on purpose, not that it
// crashed, so both are reported to suture as ErrDoNotRestart. Without this
// translation suture restarts any Serve that returns normally, and the
// restarted AsyncServer immediately fails its single-use CompareAndSwap
// guard, turning a clean exit into a backoff/error loop instead of letting
// the process exit. Any other error is a real failure and is returned
// as-is so suture applies its normal backoff-and-restart policy.
func (s *Service) Serve(ctx context.Context) error {
	err := s.runner.Serve(ctx)
	if err == nil || errors.Is(err, server.ErrShuttingDown) {
		return suture.ErrDoNotRestart
	}
	return err
}

// String implements fmt.Stringer for suture's log lines.
func (s *Service) String() string {
	return s.name
}
