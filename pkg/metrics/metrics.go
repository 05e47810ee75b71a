package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Remote transport metrics
	RemoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "naming_remote_requests_total",
			Help: "Total number of naming-server requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	RemoteRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "naming_remote_request_duration_seconds",
			Help:    "Naming-server request duration in seconds by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RemoteServerRotations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "naming_remote_server_rotations_total",
			Help: "Total number of times the remote transport rotated to the next server after a failure",
		},
	)

	// Token holder metrics
	TokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "naming_token_refresh_total",
			Help: "Total number of access-token refresh attempts by outcome",
		},
		[]string{"outcome"},
	)

	TokenTTLSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "naming_token_ttl_seconds",
			Help: "TTL in seconds reported with the most recently obtained access token",
		},
	)

	// Heartbeat reactor metrics
	BeatsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "naming_beats_total",
			Help: "Total number of heartbeats sent by outcome",
		},
		[]string{"outcome"},
	)

	BeatTasksActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "naming_beat_tasks_active",
			Help: "Number of instances currently being kept alive by the heartbeat reactor",
		},
	)

	BeatReregistrationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "naming_beat_reregistrations_total",
			Help: "Total number of re-registrations triggered by a resource-not-found beat ack",
		},
	)

	// Service cache metrics
	CacheServicesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "naming_cache_services_total",
			Help: "Number of services currently held in the local cache",
		},
	)

	CacheUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "naming_cache_updates_total",
			Help: "Total number of service cache updates by outcome (applied or suppressed)",
		},
		[]string{"changed"},
	)

	CachePersistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "naming_cache_persist_failures_total",
			Help: "Total number of failures writing a service snapshot to the failover directory",
		},
	)

	// Push receiver metrics
	PushPacketsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "naming_push_packets_total",
			Help: "Total number of UDP push packets received by type",
		},
		[]string{"type"},
	)

	PushDecodeFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "naming_push_decode_failures_total",
			Help: "Total number of push packets that failed gzip or JSON decoding",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RemoteRequestsTotal,
		RemoteRequestDuration,
		RemoteServerRotations,
		TokenRefreshTotal,
		TokenTTLSeconds,
		BeatsTotal,
		BeatTasksActive,
		BeatReregistrationsTotal,
		CacheServicesTotal,
		CacheUpdatesTotal,
		CachePersistFailuresTotal,
		PushPacketsTotal,
		PushDecodeFailuresTotal,
	)
}

// Registry returns the default Prometheus registerer so a host application
// can mount its own /metrics handler; this package does not serve one.
func Registry() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}
