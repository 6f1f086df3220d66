// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(requestsDecoded)
	RequestDecoded()
	assert.Equal(t, before+1, testutil.ToFloat64(requestsDecoded))

	before = testutil.ToFloat64(responsesSent)
	ResponseSent()
	assert.Equal(t, before+1, testutil.ToFloat64(responsesSent))

	before = testutil.ToFloat64(backpressureStalls)
	Backpressure()
	assert.Equal(t, before+1, testutil.ToFloat64(backpressureStalls))

	before = testutil.ToFloat64(flushes)
	Flushed()
	assert.Equal(t, before+1, testutil.ToFloat64(flushes))

	before = testutil.ToFloat64(servicesFinished)
	ServiceFinished()
	assert.Equal(t, before+1, testutil.ToFloat64(servicesFinished))
}

func TestPumpErrorLabelsByKind(t *testing.T) {
	before := testutil.ToFloat64(pumpErrors.WithLabelValues("decode"))
	PumpError("decode")
	assert.Equal(t, before+1, testutil.ToFloat64(pumpErrors.WithLabelValues("decode")))
}

func TestPhaseTransitionLabelsByPhase(t *testing.T) {
	before := testutil.ToFloat64(phaseTransitions.WithLabelValues("active"))
	PhaseTransition("active")
	assert.Equal(t, before+1, testutil.ToFloat64(phaseTransitions.WithLabelValues("active")))
}
