/*
Package router dispatches containers to pattern-matched subscribers
through a worker pool.

The router is a pool consumer: each matching subscription becomes one
job on the pool, so handler execution inherits the pool's concurrency,
priority handling and fault isolation.

# Architecture

	┌──────────────────── TOPIC ROUTER ────────────────────────┐
	│                                                           │
	│  Subscribe("user.*",  h1) ──► id-1                        │
	│  Subscribe("user.created", h2) ──► id-2                   │
	│  Subscribe("user.#",  h3) ──► id-3                        │
	│                                                           │
	│  Route(container)                                         │
	│    topic = "topic" value, else message_type               │
	│    match patterns ──► [h1, h2, h3] (subscription order)   │
	│    one job per subscriber ──► Pool ──► Workers            │
	│                                                           │
	│  DeliveryReport: Matched / Enqueued, Failures after Wait  │
	└───────────────────────────────────────────────────────────┘

# Pattern Grammar

Dotted segments. "*" matches exactly one segment; "#" matches one or
more segments and is only legal as the final segment.

	user.*        matches user.created, not user.created.v2
	user.#        matches user.created and user.created.v2
	user.created  exact

# Ordering

Within one Route call deliveries are enqueued in subscription order,
which is the tie-break between patterns as well (pattern specificity
carries no weight). The queue preserves that order per priority, so a
single eligible worker invokes handlers in subscription order; with
parallel workers, execution start order follows the queue but
completions may interleave. Across distinct Route calls there is no
delivery-order guarantee once jobs are handed to the pool.

# Failure Semantics

A handler failure is isolated: other subscribers still receive the
message, the failure lands in the DeliveryReport, and the pool's worker
additionally logs it as a user fault (and dead-letters it when a spool
is configured). A push failure is recorded in the report immediately.
Routing a topic nobody subscribed to is not an error: the report simply
carries zero deliveries.

# Usage

	r := router.New(p, router.Options{Logger: log.WithComponent("router")})

	id, _ := r.Subscribe("user.#", func(c *container.Container) error {
		reply := c.Copy(true)
		reply.SwapHeader()
		reply.Add(container.String("script_result", "done"))
		return nil
	})
	defer r.Unsubscribe(id)

	report, err := r.Route(msg)
	report.Wait()
	for _, f := range report.Failures() {
		// inspect f.Pattern, f.Err
	}

# Integration Points

  - pkg/pool: delivery jobs are pushed at the router's priority
  - pkg/container: topic extraction and shared-container discipline
  - pkg/metrics: delivery/failure counters and subscription gauge
*/
package router
