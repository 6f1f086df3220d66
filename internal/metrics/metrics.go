// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pump_requests_decoded_total",
		Help: "Total requests successfully decoded from the transport.",
	})

	responsesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pump_responses_sent_total",
		Help: "Total responses accepted by the transport.",
	})

	backpressureStalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pump_backpressure_stalls_total",
		Help: "Total times a response was re-queued after the transport signalled not-ready.",
	})

	flushes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pump_flushes_total",
		Help: "Total successful transport flushes.",
	})

	servicesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pump_services_finished_total",
		Help: "Total services that reported completion.",
	})

	pumpErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pump_errors_total",
		Help: "Total fatal pump errors, labeled by error kind.",
	}, []string{"kind"})

	phaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "server_phase_transitions_total",
		Help: "Total AsyncServer phase transitions, labeled by the destination phase.",
	}, []string{"phase"})
)

// RequestDecoded increments the decoded-request counter.
func RequestDecoded() { requestsDecoded.Inc() }

// ResponseSent increments the sent-response counter.
func ResponseSent() { responsesSent.Inc() }

// Backpressure increments the back-pressure-stall counter.
func Backpressure() { backpressureStalls.Inc() }

// Flushed increments the successful-flush counter.
func Flushed() { flushes.Inc() }

// ServiceFinished increments the finished-service counter.
func ServiceFinished() { servicesFinished.Inc() }

// PumpError increments the fatal-error counter for the given error kind
// (e.g. "decode", "send", "flush").
func PumpError(kind string) { pumpErrors.WithLabelValues(kind).Inc() }

// PhaseTransition increments the phase-transition counter for the phase the
// server just moved into.
func PhaseTransition(phase string) { phaseTransitions.WithLabelValues(phase).Inc() }
