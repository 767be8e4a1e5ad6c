package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Queue metrics
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_queue_depth",
			Help: "Pending jobs per priority",
		},
		[]string{"priority"},
	)

	QueueRetiredNodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_queue_retired_nodes_total",
			Help: "Segments retired by the lock-free queue",
		},
	)

	QueueReclaimedNodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_queue_reclaimed_nodes_total",
			Help: "Retired segments released by reclamation scans",
		},
	)

	// Job metrics
	JobsEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_jobs_enqueued_total",
			Help: "Jobs accepted by the queue, by priority",
		},
		[]string{"priority"},
	)

	JobsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_jobs_completed_total",
			Help: "Jobs executed successfully, by priority",
		},
		[]string{"priority"},
	)

	JobsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_jobs_failed_total",
			Help: "Jobs that reported a user fault, by priority",
		},
		[]string{"priority"},
	)

	JobsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_jobs_rejected_total",
			Help: "Pushes rejected by the queue, by reason",
		},
		[]string{"reason"},
	)

	JobsSpilled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_jobs_spilled_total",
			Help: "Job payloads spilled to disk",
		},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_job_duration_seconds",
			Help:    "Job execution duration in seconds, by priority",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"priority"},
	)

	// Worker metrics
	WorkersRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_workers_running",
			Help: "Workers currently attached and started",
		},
	)

	// Router metrics
	RouterDeliveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_router_deliveries_total",
			Help: "Handler invocations dispatched by the topic router",
		},
	)

	RouterFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_router_failures_total",
			Help: "Handler invocations that reported an error",
		},
	)

	RouterSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_router_subscriptions",
			Help: "Active topic subscriptions",
		},
	)

	// Dead-letter metrics
	DeadLetters = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_dead_letters_total",
			Help: "Failed jobs archived to the spool",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(QueueRetiredNodes)
	prometheus.MustRegister(QueueReclaimedNodes)
	prometheus.MustRegister(JobsEnqueued)
	prometheus.MustRegister(JobsCompleted)
	prometheus.MustRegister(JobsFailed)
	prometheus.MustRegister(JobsRejected)
	prometheus.MustRegister(JobsSpilled)
	prometheus.MustRegister(JobDuration)
	prometheus.MustRegister(WorkersRunning)
	prometheus.MustRegister(RouterDeliveries)
	prometheus.MustRegister(RouterFailures)
	prometheus.MustRegister(RouterSubscriptions)
	prometheus.MustRegister(DeadLetters)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
