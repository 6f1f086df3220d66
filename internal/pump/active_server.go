// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package pump implements the active request/response phase of the server
// lifecycle (ActiveServer), plus the two phases that precede it
// (StartServer, ListeningServer). Each cycle runs five sub-steps — decode and
// dispatch, collect, send, flush, check — merged through a status.Status, repeated
// until the cycle leaves Active.
package pump

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/asyncserver/internal/service"
	"github.com/tomtom215/asyncserver/internal/status"
	"github.com/tomtom215/asyncserver/internal/transport"
)

// completionsBuffer bounds how many resolved-but-not-yet-drained completions
// can sit in the fan-in channel before a completing service goroutine
// blocks handing its result off. It does not bound the number of in-flight
// calls themselves.
const completionsBuffer = 64

// ActiveServer is the pump: it owns the framed transport and the service for
// the lifetime of one connection, reading requests, dispatching them,
// collecting and sending responses, and detecting completion.
type ActiveServer[Req, Resp any] struct {
	transport transport.Transport[Req, Resp]
	svc       service.Service[Req, Resp]
	observer  Observer

	completions chan service.Result[Resp]
	inFlight    int
	responses   responseQueue[Resp]
}

// Option configures an ActiveServer at construction time.
type Option[Req, Resp any] func(*ActiveServer[Req, Resp])

// WithObserver attaches logging/metrics hooks.
func WithObserver[Req, Resp any](o Observer) Option[Req, Resp] {
	return func(a *ActiveServer[Req, Resp]) { a.observer = o }
}

// New builds an ActiveServer over an already-bound transport and a
// service instance. Ownership of both passes exclusively to the returned
// ActiveServer.
func New[Req, Resp any](tr transport.Transport[Req, Resp], svc service.Service[Req, Resp], opts ...Option[Req, Resp]) *ActiveServer[Req, Resp] {
	a := &ActiveServer[Req, Resp]{
		transport:   tr,
		svc:         svc,
		observer:    NopObserver{},
		completions: make(chan service.Result[Resp], completionsBuffer),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run drives the pump to completion: it repeatedly calls Poll, and between
// NotReady results blocks on whatever would make the next Poll call able to
// progress, instead of busy-spinning. This is the minimal reactor the
// poll-based design otherwise leaves to an external runtime — callers that
// already run inside a bigger event loop can call Poll directly instead.
func (a *ActiveServer[Req, Resp]) Run(ctx context.Context) error {
	for {
		done, err := a.Poll(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.transport.Wake():
		case res, ok := <-a.completions:
			if ok {
				a.handleCompletion(res)
			}
		}
	}
}

// Poll runs the five sub-steps in sequence, merging their outcomes into one
// status.Status, and repeats the whole sequence while that status stays
// Active. It returns once the status leaves Active, converted to the
// (done, err) pair callers expect from a single poll.
func (a *ActiveServer[Req, Resp]) Poll(ctx context.Context) (done bool, err error) {
	st := status.Active()

	for st.IsActive() {
		if st.IsRunning() {
			a.tryGetNewRequest(ctx, &st)
		}
		if st.IsRunning() {
			a.tryGetNewResponse(&st)
		}
		if st.IsRunning() {
			a.trySendResponses(&st)
		}
		if st.IsRunning() {
			a.tryFlushResponses(&st)
		}
		if st.IsRunning() {
			a.checkCompletion(&st)
		}
	}

	return st.Result()
}

// tryGetNewRequest is sub-step 1: decode one request if one is ready and
// dispatch it to the service. A clean end-of-stream is merged as made
// progress rather than a fault, so the pump keeps running — draining
// in-flight completions and queued responses, and consulting HasFinished —
// instead of exiting the moment the peer closes its write half.
func (a *ActiveServer[Req, Resp]) tryGetNewRequest(ctx context.Context, st *status.Status) {
	req, ok, err := a.transport.TryDecode()
	if err != nil {
		if errors.Is(err, transport.ErrEndOfStream) {
			st.Update(status.Active())
			return
		}
		a.observer.Error(fmt.Errorf("%w: %v", ErrDecode, err))
		st.Update(status.Err(fmt.Errorf("%w: %v", ErrDecode, err)))
		return
	}
	if !ok {
		st.Update(status.WouldBlock())
		return
	}

	a.observer.RequestDecoded()
	a.dispatch(ctx, req)
	st.Update(status.Active())
}

// dispatch calls the service and fans its eventual result into the shared
// completions channel, so the pump's poll-any-ready step only ever needs to
// watch one channel regardless of how many calls are in flight.
func (a *ActiveServer[Req, Resp]) dispatch(ctx context.Context, req Req) {
	a.inFlight++
	resultCh := a.svc.Call(ctx, req)
	go func() {
		res, ok := <-resultCh
		if !ok {
			res = service.Result[Resp]{Err: fmt.Errorf("%w: service closed its result channel without a value", ErrServiceCall)}
		}
		a.completions <- res
	}()
}

// tryGetNewResponse is sub-step 2: drain at most one ready completion into
// the response queue without blocking.
func (a *ActiveServer[Req, Resp]) tryGetNewResponse(st *status.Status) {
	select {
	case res := <-a.completions:
		a.handleCompletion(res)
		st.Update(status.Active())
	default:
		st.Update(status.WouldBlock())
	}
}

func (a *ActiveServer[Req, Resp]) handleCompletion(res service.Result[Resp]) {
	a.inFlight--
	if res.Err != nil {
		a.observer.Error(fmt.Errorf("%w: %v", ErrServiceCall, res.Err))
		return
	}
	a.responses.PushBack(res.Value)
	a.observer.ResponseEnqueued()
}

// trySendResponses is sub-step 3: submit queued responses to the transport
// in FIFO order until the queue drains or the transport applies
// back-pressure, in which case the response is put back at the head.
func (a *ActiveServer[Req, Resp]) trySendResponses(st *status.Status) {
	for !a.responses.Empty() {
		head := a.responses.PopFront()
		accepted, err := a.transport.TrySend(head)
		if err != nil {
			a.observer.Error(fmt.Errorf("%w: %v", ErrSend, err))
			st.Update(status.Err(fmt.Errorf("%w: %v", ErrSend, err)))
			return
		}
		if !accepted {
			a.responses.PushFront(head)
			a.observer.Backpressure()
			st.Update(status.WouldBlock())
			return
		}
		a.observer.ResponseSent()
		st.Update(status.Active())
	}
}

// tryFlushResponses is sub-step 4.
func (a *ActiveServer[Req, Resp]) tryFlushResponses(st *status.Status) {
	done, err := a.transport.TryFlush()
	if err != nil {
		a.observer.Error(fmt.Errorf("%w: %v", ErrFlush, err))
		st.Update(status.Err(fmt.Errorf("%w: %v", ErrFlush, err)))
		return
	}
	if !done {
		st.Update(status.WouldBlock())
		return
	}
	a.observer.Flushed()
	st.Update(status.Active())
}

// checkCompletion is sub-step 5: only consulted once both queues are
// quiesced, so the server never reports done with a response still in
// flight.
func (a *ActiveServer[Req, Resp]) checkCompletion(st *status.Status) {
	if a.inFlight != 0 || !a.responses.Empty() {
		st.Update(status.WouldBlock())
		return
	}

	finished, err := a.svc.HasFinished()
	if err != nil {
		a.observer.Error(fmt.Errorf("%w: %v", ErrHasFinished, err))
		st.Update(status.Err(fmt.Errorf("%w: %v", ErrHasFinished, err)))
		return
	}
	if finished {
		a.observer.ServiceFinished()
		st.Update(status.Finished())
		return
	}
	st.Update(status.Active())
}

// Shutdown asks the service to stop. It does not attempt to drain
// already-queued responses — that decision belongs to the outer state
// machine, which chooses not to.
func (a *ActiveServer[Req, Resp]) Shutdown() error {
	if err := a.svc.ForceStop(); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceShutdown, err)
	}
	return nil
}

// Close releases the underlying transport.
func (a *ActiveServer[Req, Resp]) Close() error {
	return a.transport.Close()
}
