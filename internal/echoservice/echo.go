// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package echoservice provides the two FiniteService implementations the
// demo wiring in cmd/server dispatches to: a synchronous echo and a
// concurrency-bounded echo that completes requests out of order.
package echoservice

import (
	"context"

	"github.com/tomtom215/asyncserver/internal/service"
)

// Message is the request and response shape both demo services speak.
type Message struct {
	Text string `json:"text"`
}

// NewEcho returns a service.Func that answers every request with the same
// text it received. It never reports itself finished, so a pump serving it
// runs until a fatal error, a Shutdown, or cancellation of Serve's context
// ends the session; the peer closing its end of the connection does not.
func NewEcho() service.Service[Message, Message] {
	return service.Func[Message, Message](func(_ context.Context, req Message) (Message, error) {
		return Message{Text: req.Text}, nil
	})
}
