/*
Package metrics provides Prometheus instrumentation for Burrow.

The metrics package defines the engine's metric set (queue depth, job
throughput and latency, reclamation progress, router deliveries), a
Timer helper for measuring operation latency, and a Collector that
bridges queue statistics snapshots into gauges on an interval.

# Metrics Catalog

Queue:
  - burrow_queue_depth{priority}: pending jobs per priority
  - burrow_queue_retired_nodes_total: lock-free segments retired
  - burrow_queue_reclaimed_nodes_total: retired segments released

Jobs:
  - burrow_jobs_enqueued_total{priority}: accepted pushes
  - burrow_jobs_completed_total{priority}: successful executions
  - burrow_jobs_failed_total{priority}: user faults
  - burrow_jobs_rejected_total{reason}: pushes refused by the queue
  - burrow_jobs_spilled_total: payloads moved to disk
  - burrow_job_duration_seconds{priority}: execution latency histogram

Workers and router:
  - burrow_workers_running: attached and started workers
  - burrow_router_deliveries_total / burrow_router_failures_total
  - burrow_router_subscriptions: active subscriptions
  - burrow_dead_letters_total: failed jobs archived to the spool

# Usage

Timing an operation:

	timer := metrics.NewTimer()
	err := j.Work(priority, logger)
	timer.ObserveDurationVec(metrics.JobDuration, priority.String())

Bridging queue stats:

	collector := metrics.NewCollector(pool.Stats, 15*time.Second)
	collector.Start()
	defer collector.Stop()

Exposition:

	http.Handle("/metrics", metrics.Handler())

# Integration Points

  - pkg/worker: job counters and duration histogram
  - pkg/pool: enqueue/reject counters, worker gauge, stats source
  - pkg/router: delivery counters and subscription gauge
  - cmd/burrow: /metrics HTTP endpoint
*/
package metrics
