// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

package obspump

import (
	"errors"

	"github.com/tomtom215/asyncserver/internal/pump"
)

// errorKind maps a pump error to the short label obspump's metrics use, so
// pump_errors_total stays low-cardinality instead of keying on err.Error().
func errorKind(err error) string {
	switch {
	case errors.Is(err, pump.ErrDecode):
		return "decode"
	case errors.Is(err, pump.ErrServiceCall):
		return "service_call"
	case errors.Is(err, pump.ErrSend):
		return "send"
	case errors.Is(err, pump.ErrFlush):
		return "flush"
	case errors.Is(err, pump.ErrHasFinished):
		return "has_finished"
	default:
		return "unknown"
	}
}
