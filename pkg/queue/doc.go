/*
Package queue implements Burrow's thread-safe, multi-priority job queue.

The queue maps each priority to a FIFO of jobs. Consumers name a primary
priority and an ordered fallback list; a dequeue visits those FIFOs in
exactly that order and returns the oldest job of the first non-empty
one. Two implementations share one contract, a coarse-lock variant and
a lock-free variant, plus an adaptive wrapper that starts coarse and
migrates under contention.

# Architecture

	┌──────────────────── PRIORITY QUEUE ──────────────────────┐
	│                                                           │
	│  producers ──► Enqueue ──┬──► realtime   FIFO             │
	│                          ├──► batch      FIFO             │
	│                          └──► background FIFO             │
	│                          │                                │
	│                          └──► Notifiers (sync, non-block) │
	│                                                           │
	│  consumers ──► Dequeue(primary, fallbacks...)             │
	│                visits FIFOs in caller order,              │
	│                oldest job of first non-empty FIFO         │
	│                                                           │
	│  shutdown:  Open ──► Draining ──► Closed                  │
	│             (one-way; Draining rejects pushes,            │
	│              Closed clears and releases waiters)          │
	└───────────────────────────────────────────────────────────┘

# Implementations

Coarse-lock (mutex):
  - One mutex plus a broadcast channel over per-priority slices
  - Blocked dequeuers capture the wake channel under the lock, so an
    enqueue between check and wait cannot be missed
  - Samples lock contention for the adaptive strategy

Lock-free (lockfree):
  - One segmented MPMC ring per priority
  - Producers reserve slots with fetch-add on the tail segment and link
    fresh segments with CAS
  - Consumers reserve with CAS on the head segment's dequeue index and
    take slots with an atomic swap: a job can be taken exactly once
  - Drained segments retire into an epoch-style reclaimer; a scan runs
    when retired > reclaimed×factor and no other dequeuer is in the
    critical region. Counts are visible in Stats.

Adaptive:
  - Starts on mutex; once lock contention crosses a threshold over a
    minimum sample, drains into a fresh lock-free queue under a write
    lock and swaps. Push-lock state and notifiers carry over.

# Ordering Guarantees

FIFO within a single priority. Across priorities there is no global age
ordering: the caller-supplied visiting order decides, so a newer
high-priority job overtakes older low-priority jobs. Batch dequeues
visit priorities in descending numeric order.

# Notifiers

A notifier runs after every successful enqueue, synchronously on the
enqueueing goroutine. Notifier code must not block; the pool's notifier
only performs non-blocking sends into per-worker channels. This is the
no-missed-wakeup edge: a notification issued after a successful enqueue
causally precedes the waking of at least one eligible worker.

# Shutdown

	Open ──Drain()──► Draining ──Close()──► Closed

Transitions are one-way. Draining engages the push lock implicitly while
existing jobs remain dequeueable. Close clears all pending jobs and
releases every blocked dequeuer with ErrShutdown.

# Usage

	q := queue.New(queue.Options{
		Strategy:        types.StrategyAdaptive,
		BoundedCapacity: 10_000,
		Logger:          log.WithComponent("queue"),
	})

	if err := q.Enqueue(j); err != nil {
		// ErrPushLocked / ErrQueueFull / ErrShutdown
	}

	j, err := q.DequeueBlocking(types.RealTime,
		[]types.Priority{types.Batch}, time.Time{})

# Integration Points

  - pkg/pool: owns the queue, registers the worker-waking notifier
  - pkg/worker: dequeues with its primary and fallback priorities
  - pkg/metrics: bridges Stats() into prometheus gauges

# See Also

  - pkg/worker for the wake predicate built on Contains
  - pkg/pool for drain-or-discard shutdown built on Drain/Close
*/
package queue
