/*
Package pool aggregates workers around one shared priority queue.

The pool owns the queue, fans enqueue notifications out to its workers,
threads the injected collaborator bundle through spill and dead-letter
handling, and provides ordered start/stop with drain-or-discard
semantics.

# Architecture

	┌────────────────────────── POOL ──────────────────────────┐
	│                                                           │
	│  Push(job) ──► attach weak handle ──► spill? ──► Queue    │
	│                                          │                │
	│                        notifier ◄────────┘                │
	│                            │ Notification(priority)       │
	│            ┌───────────────┼───────────────┐              │
	│            ▼               ▼               ▼              │
	│        Worker W1       Worker W2       Worker W3          │
	│        [high]          [normal,        [low,              │
	│                         {high}]         {high,normal}]    │
	│            │               │               │              │
	│            └───────── handlers ────────────┘              │
	│                  (may Requeue via handle)                 │
	│                                                           │
	│  Stop(drain): Drain queue ─► stop workers ─► join ─►      │
	│               Close queue ─► invalidate handle            │
	└───────────────────────────────────────────────────────────┘

# Lifecycle

Append injects the shared queue into a worker and records it; autoStart
starts it on the spot. Start launches every attached worker in
insertion order. Stop first drains the queue's push side (pushes are
rejected as soon as Stop is invoked, regardless of the drain flag), then
signals every worker with the chosen drain policy and joins them, and
finally closes the queue and invalidates the requeue handle. Close is
Stop(false) for use in defer chains. No job survives the pool.

# Notifications

The pool registers itself as the queue's notifier. Notification fans
the enqueued priority out to every worker; each worker filters against
its own priority set and receives through a bounded channel with
overflow dropping, so a slow worker can never stall a producer.

# Weak Handle

Every pushed job gets a handle that resolves to this pool. A work
method that produces follow-up work calls Requeue, which forwards
through the handle; after the pool stops the handle is invalidated and
follow-ups are dropped without error.

# Spill and Dead Letters

With SpillEnabled, payloads at or above SpillThreshold move to the
collaborators' scratch directory before queueing, compressed and
encrypted when those collaborators are present. When a Spool is
configured, jobs that fail with a user fault are archived as dead
letters after execution.

# Usage

	p := pool.New(pool.Options{
		Queue:  queue.Options{Strategy: types.StrategyAdaptive},
		Logger: log.WithComponent("pool"),
	})
	defer p.Close()

	p.Append(worker.New("rt", types.RealTime, nil, logger), false)
	p.Append(worker.New("batch", types.Batch,
		[]types.Priority{types.RealTime}, logger), false)
	if err := p.Start(); err != nil {
		return err
	}

	p.Push(job.WithPayload(types.RealTime, payload, handle))
	p.Stop(true) // drain

# Integration Points

  - pkg/queue: owned shared queue and its notifier hook
  - pkg/worker: lifecycle management and fault hook injection
  - pkg/router: pushes one job per matched subscriber
  - pkg/spool: dead-letter archive target
  - pkg/metrics: enqueue/reject counters, worker gauge, stats source
*/
package pool
