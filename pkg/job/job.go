package job

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/types"
)

// Work is the overridable execution carrier. Run receives the priority of
// the executing worker and the job's payload; it may inspect and modify
// the payload bytes in place.
type Work interface {
	Run(workerPriority types.Priority, payload []byte) error
}

// WorkFunc adapts a function to the Work interface.
type WorkFunc func(workerPriority types.Priority, payload []byte) error

func (f WorkFunc) Run(workerPriority types.Priority, payload []byte) error {
	return f(workerPriority, payload)
}

type carrierKind int

const (
	carrierNone carrierKind = iota
	carrierCallback
	carrierPayloadCallback
	carrierOverride
)

func (k carrierKind) String() string {
	switch k {
	case carrierCallback:
		return "callback"
	case carrierPayloadCallback:
		return "payload_callback"
	case carrierOverride:
		return "override"
	default:
		return "none"
	}
}

// Job is a unit of work. It carries a priority, an optional payload of
// bytes (usually a serialized container) and exactly one work carrier.
// A job is owned by its producer until enqueued, by the queue while
// pending, and by the executing worker until completion.
type Job struct {
	id       string
	priority types.Priority

	kind      carrierKind
	callback  func() error
	payloadFn func(payload []byte) error
	override  Work

	payload   []byte
	spillPath string
	spilled   spillTransforms

	handle *Handle
}

// Callback creates a job that runs a payload-less function.
func Callback(priority types.Priority, fn func() error) *Job {
	return &Job{
		id:       uuid.New().String(),
		priority: priority,
		kind:     carrierCallback,
		callback: fn,
	}
}

// WithPayload creates a job whose function receives the payload bytes.
// The payload slice is owned by the job from here on.
func WithPayload(priority types.Priority, payload []byte, fn func(payload []byte) error) *Job {
	return &Job{
		id:        uuid.New().String(),
		priority:  priority,
		kind:      carrierPayloadCallback,
		payloadFn: fn,
		payload:   payload,
	}
}

// DataOnly creates a job carrying bytes and no work carrier. Executing
// it is an intentional no-op that still emits a trace record; the data
// travels through the queue for consumers that drain it in batches.
func DataOnly(priority types.Priority, payload []byte) *Job {
	return &Job{
		id:       uuid.New().String(),
		priority: priority,
		kind:     carrierNone,
		payload:  payload,
	}
}

// Override creates a job executed through a user-supplied Work
// implementation.
func Override(priority types.Priority, payload []byte, w Work) *Job {
	return &Job{
		id:       uuid.New().String(),
		priority: priority,
		kind:     carrierOverride,
		override: w,
		payload:  payload,
	}
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.id }

// Priority returns the job's priority tag.
func (j *Job) Priority() types.Priority { return j.priority }

// Payload returns the in-memory payload. Empty while spilled to disk.
func (j *Job) Payload() []byte { return j.payload }

// Spilled reports whether the payload currently lives on disk.
func (j *Job) Spilled() bool { return j.spillPath != "" }

// Attach installs the weak back-reference to the owning pool. Called by
// the pool on push; re-enqueueing from inside a work method goes through
// this handle and degrades to a silent drop once the pool is gone.
func (j *Job) Attach(h *Handle) { j.handle = h }

// Requeue pushes a follow-up job through the owning pool's handle. The
// follow-up inherits the handle. When the pool has already been
// destroyed the job is dropped without error.
func (j *Job) Requeue(next *Job) error {
	if j.handle == nil {
		return nil
	}
	next.handle = j.handle
	return j.handle.Push(next)
}

// Work restores a spilled payload, dispatches the installed carrier and
// reports the outcome. User panics are captured and converted to a
// *UserFaultError; they never propagate to the worker. Every execution
// emits a trace record with the job priority, the worker priority and
// the outcome.
func (j *Job) Work(workerPriority types.Priority, logger zerolog.Logger) (err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = &UserFaultError{Panic: r}
		}
		j.trace(workerPriority, time.Since(start), logger, err)
	}()

	if err := j.Load(); err != nil {
		return err
	}

	switch j.kind {
	case carrierCallback:
		if e := j.callback(); e != nil {
			return &UserFaultError{Err: e}
		}
	case carrierPayloadCallback:
		if e := j.payloadFn(j.payload); e != nil {
			return &UserFaultError{Err: e}
		}
	case carrierOverride:
		if e := j.override.Run(workerPriority, j.payload); e != nil {
			return &UserFaultError{Err: e}
		}
	case carrierNone:
		// Data-only job: intentional no-op, traced below.
	}
	return nil
}

func (j *Job) trace(workerPriority types.Priority, d time.Duration, logger zerolog.Logger, err error) {
	lg := log.WithJob(logger, j.id)
	ev := lg.Debug()
	if err != nil {
		ev = lg.Warn().Err(err)
	}
	ev.
		Str("job_priority", j.priority.String()).
		Str("worker_priority", workerPriority.String()).
		Str("carrier", j.kind.String()).
		Dur("duration", d).
		Bool("ok", err == nil).
		Msg("job executed")
}
