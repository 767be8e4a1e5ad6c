package worker

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/types"
)

var (
	// ErrAlreadyStarted reports a second Start on a running worker.
	ErrAlreadyStarted = errors.New("worker already started")

	// ErrNoQueue reports Start before a queue was injected.
	ErrNoQueue = errors.New("worker has no queue")
)

// State is the worker lifecycle phase.
type State int32

const (
	StateNew State = iota
	StateStarting
	StateRunning
	StateWaiting
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// notifyBuffer bounds the per-worker notification channel. Overflow is
// dropped: the wake predicate re-checks the queue, so a dropped
// notification can only be redundant.
const notifyBuffer = 64

// Worker is a dedicated goroutine that watches one primary priority and
// an ordered list of fallback priorities, waking on notifications and
// executing jobs until stopped.
type Worker struct {
	name      string
	primary   types.Priority
	fallbacks []types.Priority

	q      queue.Queue
	notify chan types.Priority
	stopCh chan struct{}
	done   chan struct{}

	state   atomic.Int32
	drain   atomic.Bool
	stopped atomic.Bool
	running atomic.Bool

	executed atomic.Uint64
	failed   atomic.Uint64

	onFault func(j *job.Job, err error)

	logger zerolog.Logger
}

// New creates a detached worker. The pool injects the queue on append;
// SetQueue allows standalone use.
func New(name string, primary types.Priority, fallbacks []types.Priority, logger zerolog.Logger) *Worker {
	w := &Worker{
		name:      name,
		primary:   primary,
		fallbacks: append([]types.Priority(nil), fallbacks...),
		notify:    make(chan types.Priority, notifyBuffer),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
		logger:    log.WithWorker(logger, name),
	}
	w.drain.Store(true)
	return w
}

// Name returns the worker's name.
func (w *Worker) Name() string { return w.name }

// Primary returns the primary priority.
func (w *Worker) Primary() types.Priority { return w.primary }

// Fallbacks returns the ordered fallback priorities.
func (w *Worker) Fallbacks() []types.Priority {
	return append([]types.Priority(nil), w.fallbacks...)
}

// Matches reports whether p is the primary or one of the fallbacks.
func (w *Worker) Matches(p types.Priority) bool {
	if p == w.primary {
		return true
	}
	for _, f := range w.fallbacks {
		if f == p {
			return true
		}
	}
	return false
}

// SetQueue injects the shared queue. Must happen before Start.
func (w *Worker) SetQueue(q queue.Queue) { w.q = q }

// SetFaultHook installs a callback invoked after a job fails. The pool
// uses it to archive dead letters. Must happen before Start.
func (w *Worker) SetFaultHook(fn func(j *job.Job, err error)) { w.onFault = fn }

// State returns the current lifecycle phase.
func (w *Worker) State() State { return State(w.state.Load()) }

// Executed returns how many jobs this worker has run.
func (w *Worker) Executed() uint64 { return w.executed.Load() }

// Failed returns how many of those jobs reported a fault.
func (w *Worker) Failed() uint64 { return w.failed.Load() }

// Start launches the worker goroutine. It fails on a missing queue or
// a repeated start; goroutine spawn itself cannot fail in Go, so these
// two states are the whole error surface.
func (w *Worker) Start() error {
	if w.q == nil {
		return ErrNoQueue
	}
	if !w.state.CompareAndSwap(int32(StateNew), int32(StateStarting)) {
		return ErrAlreadyStarted
	}

	w.logger.Info().
		Str("primary", w.primary.String()).
		Int("fallbacks", len(w.fallbacks)).
		Msg("worker starting")

	w.running.Store(true)
	go w.run()
	return nil
}

// Notify wakes the worker for priority p. Notifications for priorities
// outside the worker's set are dropped at the door, so the worker never
// wakes for work it cannot take. A full channel also drops: the wake
// predicate re-reads the queue, making dropped notifications redundant.
func (w *Worker) Notify(p types.Priority) {
	if !w.Matches(p) {
		return
	}
	select {
	case w.notify <- p:
	default:
	}
}

// Stop requests termination. With drain=true the worker finishes every
// queued job it can see before exiting; with drain=false it exits after
// at most the job currently executing. Stop is idempotent; the first
// call's drain flag wins.
func (w *Worker) Stop(drain bool) {
	if w.stopped.CompareAndSwap(false, true) {
		w.drain.Store(drain)
		close(w.stopCh)
	}
}

// Join blocks until the worker goroutine has exited. A worker that was
// never started joins immediately.
func (w *Worker) Join() {
	if !w.running.Load() {
		return
	}
	<-w.done
}

func (w *Worker) stopRequested() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

// run is the main loop. Wake predicate: stop requested OR the queue
// contains a job at the primary or any fallback priority.
func (w *Worker) run() {
	defer func() {
		w.state.Store(int32(StateStopped))
		w.logger.Info().
			Uint64("executed", w.executed.Load()).
			Uint64("failed", w.failed.Load()).
			Msg("worker stopped")
		close(w.done)
	}()

	for {
		// Wait for the wake predicate.
		for !w.stopRequested() && !w.q.Contains(w.primary, w.fallbacks) {
			w.state.Store(int32(StateWaiting))
			select {
			case <-w.notify:
			case <-w.stopCh:
			}
		}

		if w.stopRequested() {
			w.state.Store(int32(StateStopping))
			if !w.drain.Load() {
				return
			}
		}

		j := w.q.Dequeue(w.primary, w.fallbacks)
		if j == nil {
			if w.stopRequested() {
				// Drain path: queue exhausted.
				return
			}
			continue
		}

		w.state.Store(int32(StateRunning))
		timer := metrics.NewTimer()
		err := j.Work(w.primary, w.logger)
		timer.ObserveDurationVec(metrics.JobDuration, j.Priority().String())

		if err != nil {
			w.failed.Add(1)
			metrics.JobsFailed.WithLabelValues(j.Priority().String()).Inc()
			if w.onFault != nil {
				w.onFault(j, err)
			}
		} else {
			metrics.JobsCompleted.WithLabelValues(j.Priority().String()).Inc()
		}
		w.executed.Add(1)
	}
}
