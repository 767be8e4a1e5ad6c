/*
Package worker implements the dedicated execution goroutine of the
Burrow engine.

A worker watches one primary priority and an ordered list of fallback
priorities on a shared queue. It sleeps until notified, re-checks the
queue, executes one job at a time, and keeps running through user
faults until stopped.

# State Machine

	New → Starting → Running ⇄ Waiting → Stopping → Stopped

# Wake Predicate

A worker wakes when a stop was requested OR the queue contains a job at
its primary or any fallback priority. Notifications arrive on a bounded
channel; the pool fans every notification out to every worker and Notify
drops those for priorities outside the worker's set, so a notification
for a priority the worker cannot serve never wakes it, not even spuriously. Channel
overflow drops the notification, which is safe because the predicate re-reads
the queue.

# Main Loop

	wait until wake predicate
	if stop requested and drain is off: exit
	dequeue(primary, fallbacks)
	  empty and stop requested: exit      (drain path)
	  empty otherwise: wait again
	execute job, record metrics, loop

A failing job is logged and discarded; user code can never terminate
the worker. Start can only fail on a missing queue or a repeated start
since goroutine spawn itself cannot fail in Go.

# Usage

	w := worker.New("batch-1", types.Batch,
		[]types.Priority{types.RealTime}, logger)
	w.SetQueue(q)
	if err := w.Start(); err != nil {
		return err
	}
	...
	w.Stop(true) // drain
	w.Join()

Workers are usually managed through pkg/pool, which injects the queue,
wires the fault hook and handles ordered start/stop.

# Integration Points

  - pkg/queue: Contains drives the wake predicate, Dequeue the loop
  - pkg/job: Work executes with the worker's primary priority
  - pkg/pool: lifecycle owner and notification source
  - pkg/metrics: per-priority execution counters and latency
*/
package worker
