// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package server

import "errors"

// ErrServerWasShutDown is returned by Serve once the server has reached
// PhaseDead.
var ErrServerWasShutDown = errors.New("server: already shut down")

// ErrShuttingDown is returned by Shutdown (and by a concurrent Serve caller)
// once a shutdown has been requested but the inner phase hasn't finished
// unwinding yet.
var ErrShuttingDown = errors.New("server: shutdown in progress")

// ErrAlreadyServing is returned by Serve/ServeAsync when called more than
// once on the same AsyncServer before it has reached PhaseDead.
var ErrAlreadyServing = errors.New("server: serve already called")
