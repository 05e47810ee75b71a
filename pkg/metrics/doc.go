/*
Package metrics defines and registers the naming client's Prometheus metrics.

The metrics package constructs the client's counters, gauges, and histograms
at package init and registers them against the default Prometheus registry.
It does not run its own HTTP server; a host application mounts Registry()
behind whatever mux it already serves /metrics from.

# Architecture

	┌──────────────────── METRICS SYSTEM ───────────────────────┐
	│                                                             │
	│  ┌───────────────────────────────────────────┐            │
	│  │          Prometheus Registry                │            │
	│  │  - DefaultRegisterer                        │            │
	│  │  - MustRegister at package init             │            │
	│  └──────────────────┬──────────────────────────┘            │
	│                     │                                        │
	│  ┌──────────────────▼──────────────────────────┐            │
	│  │           Metric Categories                  │            │
	│  │                                               │            │
	│  │  Remote:  requests_total, duration, rotations │            │
	│  │  Token:   refresh_total, ttl_seconds          │            │
	│  │  Beat:    beats_total, tasks_active,          │            │
	│  │           reregistrations_total               │            │
	│  │  Cache:   services_total, updates_total,      │            │
	│  │           persist_failures_total              │            │
	│  │  Push:    packets_total, decode_failures_total│            │
	│  └──────────────────┬──────────────────────────┘            │
	│                     │                                        │
	│  ┌──────────────────▼──────────────────────────┐            │
	│  │       Host application's /metrics mux        │            │
	│  │  (metrics.Registry() wired into it by caller) │            │
	│  └───────────────────────────────────────────────┘            │
	└─────────────────────────────────────────────────────────────┘

# Usage

Exposing metrics from a host application:

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		prometheus.DefaultGatherer, promhttp.HandlerOpts{}))

Timing an operation:

	timer := metrics.NewTimer()
	// ... do work ...
	timer.ObserveDurationVec(metrics.RemoteRequestDuration, "register_instance")

# Design Notes

Metrics are incremented by the component that owns the outcome (the remote
transport increments RemoteRequestsTotal, the beat reactor increments
BeatsTotal) rather than by a central collector, matching how each component
already logs its own outcomes via pkg/log. This keeps a component's
observability next to its logic instead of requiring a second pass over
the codebase to wire instrumentation in.

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
