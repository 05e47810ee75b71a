package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewTimerStartsImmediately mirrors how httpClient.requestStr starts a
// Timer before the server-rotation loop and defers the observation.
func TestNewTimerStartsImmediately(t *testing.T) {
	timer := NewTimer()
	if timer == nil {
		t.Fatal("NewTimer() returned nil")
	}
	if timer.start.IsZero() {
		t.Error("NewTimer() start time is zero")
	}
}

// TestTimerObserveDurationVecRecordsAgainstOperationLabel exercises the
// exact call shape pkg/remote uses: time a remote call, then observe it
// against RemoteRequestDuration keyed by operation name.
func TestTimerObserveDurationVecRecordsAgainstOperationLabel(t *testing.T) {
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_naming_remote_request_duration_seconds",
			Help:    "test copy of naming_remote_request_duration_seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)
	timer.ObserveDurationVec(vec, "register_instance")

	if got := testutil.CollectAndCount(vec); got != 1 {
		t.Errorf("ObserveDurationVec() recorded %d samples, want 1", got)
	}

	observer, err := vec.GetMetricWithLabelValues("register_instance")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if observer == nil {
		t.Error("expected an observer for the register_instance label")
	}
}

// TestTimerObserveDurationVecKeepsLabelsIndependent confirms beat and query
// operations land in distinct buckets, the way pkg/remote's "operation"
// label is expected to separate them on a shared histogram.
func TestTimerObserveDurationVecKeepsLabelsIndependent(t *testing.T) {
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_naming_remote_request_duration_seconds_2",
			Help:    "test copy of naming_remote_request_duration_seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	NewTimer().ObserveDurationVec(vec, "beat")
	NewTimer().ObserveDurationVec(vec, "query_instances")

	if got := testutil.CollectAndCount(vec); got != 2 {
		t.Errorf("ObserveDurationVec() recorded %d distinct label series, want 2", got)
	}
}
