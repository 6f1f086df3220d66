// asyncserver - Single-Connection Async Request/Response Server Framework
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/asyncserver

/*
Package metrics exposes Prometheus instrumentation for the active pump;
internal/obspump's pump.Observer implementation increments the pump
counters. Metrics are exported in Prometheus
text format; cmd/server mounts them behind chi at /metrics.

Available metrics:

  - pump_requests_decoded_total: requests successfully decoded (counter)
  - pump_responses_sent_total: responses accepted by the transport (counter)
  - pump_backpressure_stalls_total: times a response was re-queued after the
    transport signalled not-ready (counter)
  - pump_flushes_total: successful transport flushes (counter)
  - pump_errors_total: fatal pump errors, labeled by error kind (counter)
  - pump_services_finished_total: services that reported completion (counter)
  - server_phase_transitions_total: AsyncServer phase transitions, labeled by
    the destination phase (counter); incremented only through
    PhaseTransition, which AsyncServer itself does not call
*/
package metrics
