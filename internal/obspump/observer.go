// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

// Package obspump implements pump.Observer with zerolog logging and
// Prometheus metrics, closing the dependency-inversion gap internal/pump
// leaves open so the core stays free of any particular observability
// library.
package obspump

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/asyncserver/internal/logging"
	"github.com/tomtom215/asyncserver/internal/metrics"
)

// Observer logs routine pump events at debug level (trace-level detail would
// be too chatty for a request/response hot path), service completion at info
// and errors at error level, and records a Prometheus metric for every event
// except ResponseEnqueued. One Observer is built per connection so every log line it
// emits carries that connection's correlation ID.
type Observer struct {
	log zerolog.Logger
}

// New builds an Observer whose log lines carry connID as a field.
func New(connID string) *Observer {
	return &Observer{log: logging.WithComponent("pump").With().Str("conn_id", connID).Logger()}
}

func (o *Observer) RequestDecoded() {
	o.log.Debug().Msg("request decoded")
	metrics.RequestDecoded()
}

func (o *Observer) ResponseEnqueued() {
	o.log.Debug().Msg("response enqueued")
}

func (o *Observer) ResponseSent() {
	o.log.Debug().Msg("response sent")
	metrics.ResponseSent()
}

func (o *Observer) Backpressure() {
	o.log.Debug().Msg("back-pressure: response re-queued at head")
	metrics.Backpressure()
}

func (o *Observer) Flushed() {
	o.log.Debug().Msg("responses flushed")
	metrics.Flushed()
}

func (o *Observer) ServiceFinished() {
	o.log.Info().Msg("service finished")
	metrics.ServiceFinished()
}

func (o *Observer) Error(err error) {
	o.log.Error().Err(err).Msg("pump error")
	metrics.PumpError(errorKind(err))
}
