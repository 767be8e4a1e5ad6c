package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cuemby/burrow/pkg/types"
)

// TestTimerDuration tests duration measurement
func TestTimerDuration(t *testing.T) {
	timer := NewTimer()

	sleepDuration := 50 * time.Millisecond
	time.Sleep(sleepDuration)

	duration := timer.Duration()
	if duration < sleepDuration {
		t.Errorf("Timer.Duration() = %v, want >= %v", duration, sleepDuration)
	}
}

// TestTimerObserveDurationVec tests histogram vec observation
func TestTimerObserveDurationVec(t *testing.T) {
	histogramVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_duration_vec_seconds",
			Help:    "Test duration histogram vec",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"priority"},
	)

	timer := NewTimer()
	time.Sleep(10 * time.Millisecond)

	// This should not panic
	timer.ObserveDurationVec(histogramVec, "batch")

	if timer.Duration() == 0 {
		t.Error("Timer.ObserveDurationVec() recorded zero duration")
	}
}

// TestTimerMultipleCalls tests that Duration can be called multiple times
func TestTimerMultipleCalls(t *testing.T) {
	timer := NewTimer()

	time.Sleep(20 * time.Millisecond)
	duration1 := timer.Duration()

	time.Sleep(20 * time.Millisecond)
	duration2 := timer.Duration()

	if duration2 <= duration1 {
		t.Errorf("second Duration() call should be longer: first=%v, second=%v", duration1, duration2)
	}
}

// TestCollectorBridgesStats tests that the collector pushes a stats
// snapshot into the gauges
func TestCollectorBridgesStats(t *testing.T) {
	source := func() types.QueueStats {
		return types.QueueStats{
			PendingPerPriority: map[types.Priority]int{
				types.Batch:    4,
				types.RealTime: 1,
			},
			RetiredNodes:   7,
			ReclaimedNodes: 3,
		}
	}

	c := NewCollector(source, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(QueueDepth.WithLabelValues("batch")); got != 4 {
		t.Errorf("queue depth batch = %v, want 4", got)
	}
	if got := testutil.ToFloat64(QueueDepth.WithLabelValues("realtime")); got != 1 {
		t.Errorf("queue depth realtime = %v, want 1", got)
	}
	if got := testutil.ToFloat64(QueueRetiredNodes); got != 7 {
		t.Errorf("retired = %v, want 7", got)
	}
	if got := testutil.ToFloat64(QueueReclaimedNodes); got != 3 {
		t.Errorf("reclaimed = %v, want 3", got)
	}
}
