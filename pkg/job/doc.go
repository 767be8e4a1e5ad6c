/*
Package job defines Burrow's unit of work.

A job carries a priority, an optional payload of bytes (usually a
serialized container) and exactly one work carrier: a payload-less
callback, a callback receiving the payload, or a user Work
implementation. Data-only jobs carry bytes and no carrier; executing one
is an intentional no-op that still emits a trace record.

# Architecture

	┌───────────────────────── JOB ────────────────────────────┐
	│                                                           │
	│  priority ──────────┐                                     │
	│                     ▼                                     │
	│  ┌────────────────────────────────────────────┐          │
	│  │  exactly one carrier                        │          │
	│  │   - Callback       func() error             │          │
	│  │   - WithPayload    func(payload) error      │          │
	│  │   - Override       Work.Run(prio, payload)  │          │
	│  │   - DataOnly       none (no-op)             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │ Work(workerPriority, logger)        │
	│                     ▼                                     │
	│  load spill → dispatch → recover panics → trace record    │
	│                                                           │
	│  payload ◄──────► spill file  (<128-bit-hex>.job,         │
	│                   optional compress + encrypt)            │
	│                                                           │
	│  Handle ── weak back-reference to the pool for            │
	│            re-enqueueing follow-up jobs                   │
	└───────────────────────────────────────────────────────────┘

# Execution Contract

Work restores a spilled payload, dispatches the carrier, and converts
every user failure (returned error or panic) into a *UserFaultError.
The worker logs the fault and keeps running; user code can never take a
worker down. Each execution emits a structured trace record carrying the
job priority, the worker priority, the carrier kind, the duration and
the outcome: debug level on success, warn on failure.

# Spill

SpillToDisk moves the payload into a uniquely named file under the
injected scratch directory and clears the in-memory copy; Load inverts
it. When a compressor or encryptor collaborator is configured the
payload is compressed then encrypted on the way out and decrypted then
decompressed on the way back. Load is idempotent for jobs that never
spilled. Spill file cleanup on shutdown is the embedder's duty.

# Re-enqueueing

Jobs carry a weak back-reference (Handle) to the owning pool. A work
method that produces follow-up work calls Requeue, which forwards
through the handle. After the pool is destroyed the handle is
invalidated and Requeue drops the follow-up without error.

# Usage

	j := job.WithPayload(types.RealTime, msg.Serialize(), func(p []byte) error {
		c, err := container.Deserialize(p)
		if err != nil {
			return err
		}
		return handle(c)
	})

# Integration Points

  - pkg/queue: owns pending jobs
  - pkg/worker: executes jobs and logs outcomes
  - pkg/pool: attaches the requeue handle on push
  - pkg/compress, pkg/crypt: optional spill transforms
*/
package job
