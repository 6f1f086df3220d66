// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package pump

import "errors"

// ErrDecode wraps a framed-stream decode failure (new-request error).
var ErrDecode = errors.New("pump: failed to decode request")

// ErrServiceCall wraps an error a dispatched service call resolved with
// (new-response error).
var ErrServiceCall = errors.New("pump: service call failed")

// ErrSend wraps a framed-sink encode/write failure (send-response error).
var ErrSend = errors.New("pump: failed to send response")

// ErrFlush wraps a framed-sink flush failure.
var ErrFlush = errors.New("pump: failed to flush responses")

// ErrHasFinished wraps a failure from the service's completion oracle.
var ErrHasFinished = errors.New("pump: service finished-check failed")

// ErrServiceCreation wraps a service factory failure.
var ErrServiceCreation = errors.New("pump: service factory failed")

// ErrServiceShutdown wraps a ForceStop failure.
var ErrServiceShutdown = errors.New("pump: service shutdown failed")

// ErrAlreadyEmitted is returned by ListeningServer.Wait/Shutdown once it has
// already handed its ActiveServer to the caller.
var ErrAlreadyEmitted = errors.New("pump: listening server already emitted its active server")

// ErrAlreadyStarted is returned by StartServer.Wait when called a second
// time.
var ErrAlreadyStarted = errors.New("pump: start server already polled")

// ErrBindSocket wraps a listener bind failure.
var ErrBindSocket = errors.New("pump: failed to bind listen address")
