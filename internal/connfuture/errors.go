// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package connfuture

import "errors"

// ErrNoConnections is returned when the listener's accept stream closed
// before a single connection arrived.
var ErrNoConnections = errors.New("connfuture: listener closed before any connection was accepted")

// ErrAccept wraps an OS-level accept failure that isn't a clean listener
// close.
var ErrAccept = errors.New("connfuture: accept failed")

// ErrBindTransport wraps a codec's BindTransport failure.
var ErrBindTransport = errors.New("connfuture: codec failed to bind transport")

// ErrCodecLock is returned when the shared codec handle was poisoned by an
// earlier panic.
var ErrCodecLock = errors.New("connfuture: shared codec lock poisoned")
