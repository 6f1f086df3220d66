// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package obspump

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomtom215/asyncserver/internal/pump"
)

func TestErrorKindClassifiesPumpSentinels(t *testing.T) {
	assert.Equal(t, "decode", errorKind(pump.ErrDecode))
	assert.Equal(t, "send", errorKind(pump.ErrSend))
	assert.Equal(t, "unknown", errorKind(errors.New("something else")))
}

func TestObserverMethodsDoNotPanic(t *testing.T) {
	o := New("conn-123")
	assert.NotPanics(t, func() {
		o.RequestDecoded()
		o.ResponseEnqueued()
		o.ResponseSent()
		o.Backpressure()
		o.Flushed()
		o.ServiceFinished()
		o.Error(pump.ErrSend)
	})
}
