package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/worker"
)

// ErrStopped reports operations on a pool after Stop.
var ErrStopped = errors.New("pool stopped")

// DeadLetter archives jobs that failed with a user fault. pkg/spool
// provides the bbolt-backed implementation.
type DeadLetter interface {
	Archive(j *job.Job, cause error) error
}

// Options configures pool construction.
type Options struct {
	// Queue configures the shared queue.
	Queue queue.Options

	// Collaborators are the injected services: clock, scratch
	// directory, optional compressor/encryptor for spill.
	Collaborators types.Collaborators

	// SpillEnabled moves large payloads to the scratch directory at
	// push time. Off by default.
	SpillEnabled bool

	// SpillThreshold is the payload size, in bytes, at or above which an
	// accepted job spills. Defaults to 64 KiB.
	SpillThreshold int

	// Spool, when set, receives failed jobs as dead letters.
	Spool DeadLetter

	Logger zerolog.Logger
}

// Pool aggregates workers around one shared queue, fans enqueue
// notifications out to them and owns ordered start/stop with
// drain-or-discard semantics.
type Pool struct {
	mu           sync.Mutex
	workers      []*worker.Worker
	startedCount int
	stopped      bool

	q      queue.Queue
	handle *job.Handle
	collab types.Collaborators

	spillEnabled   bool
	spillThreshold int
	spool          DeadLetter

	logger zerolog.Logger
}

// New creates a pool with its queue. The pool registers itself as the
// queue's notifier: every successful enqueue is fanned out to every
// worker whose priority set includes the enqueued priority.
func New(opts Options) *Pool {
	if opts.SpillThreshold <= 0 {
		opts.SpillThreshold = 64 * 1024
	}
	p := &Pool{
		q:              queue.New(opts.Queue),
		collab:         opts.Collaborators.WithDefaults(),
		spillEnabled:   opts.SpillEnabled,
		spillThreshold: opts.SpillThreshold,
		spool:          opts.Spool,
		logger:         opts.Logger,
	}
	p.handle = job.NewHandle(p)
	p.q.AddNotifier(p.Notification)
	return p
}

// Append attaches a worker: the shared queue is injected, the worker is
// recorded and, with autoStart, started immediately.
func (p *Pool) Append(w *worker.Worker, autoStart bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}

	w.SetQueue(p.q)
	w.SetFaultHook(p.archive)
	p.workers = append(p.workers, w)

	if autoStart {
		if err := w.Start(); err != nil {
			return fmt.Errorf("starting worker %s: %w", w.Name(), err)
		}
		p.startedCount++
		metrics.WorkersRunning.Inc()
	}
	return nil
}

// Start starts every attached worker in insertion order. Workers that
// are already running are skipped; any other start failure aborts.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}
	for _, w := range p.workers {
		switch err := w.Start(); err {
		case nil:
			p.startedCount++
			metrics.WorkersRunning.Inc()
		case worker.ErrAlreadyStarted:
		default:
			return fmt.Errorf("starting worker %s: %w", w.Name(), err)
		}
	}
	p.logger.Info().Int("workers", len(p.workers)).Msg("pool started")
	return nil
}

// Stop shuts the pool down. Pushes are rejected from this point on
// regardless of drain: with drain=true the call blocks until every
// queued job has executed; with drain=false workers exit after at most
// the job currently running and the remainder is dropped.
func (p *Pool) Stop(drain bool) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	workers := append([]*worker.Worker(nil), p.workers...)
	started := p.startedCount
	p.startedCount = 0
	p.mu.Unlock()

	begin := p.collab.Clock.Now()

	// Reject new pushes first so drain has a finite amount of work.
	p.q.Drain()

	for _, w := range workers {
		w.Stop(drain)
	}
	for _, w := range workers {
		w.Join()
	}
	metrics.WorkersRunning.Sub(float64(started))

	dropped := p.q.Len()
	p.q.Close()
	p.handle.Invalidate()

	p.logger.Info().
		Bool("drain", drain).
		Int("dropped", dropped).
		Dur("duration", p.collab.Clock.Now().Sub(begin)).
		Msg("pool stopped")
}

// Close stops the pool without draining if it is still running. No job
// survives the pool.
func (p *Pool) Close() {
	p.Stop(false)
}

// Push forwards a job to the queue. The job receives the pool's weak
// handle so work methods can re-enqueue follow-ups; when spill is
// enabled, oversized payloads move to the scratch directory before
// queueing.
func (p *Pool) Push(j *job.Job) error {
	j.Attach(p.handle)

	if p.spillEnabled && len(j.Payload()) >= p.spillThreshold {
		err := j.SpillToDisk(job.SpillOptions{
			Dir:        p.collab.ScratchDir,
			Compressor: p.collab.Compressor,
			Encryptor:  p.collab.Encryptor,
		})
		if err != nil {
			p.logger.Warn().Err(err).Str("job_id", j.ID()).Msg("spill failed, keeping payload in memory")
		} else {
			metrics.JobsSpilled.Inc()
		}
	}

	if err := p.q.Enqueue(j); err != nil {
		metrics.JobsRejected.WithLabelValues(rejectReason(err)).Inc()
		return err
	}
	metrics.JobsEnqueued.WithLabelValues(j.Priority().String()).Inc()
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, queue.ErrPushLocked):
		return "push_locked"
	case errors.Is(err, queue.ErrQueueFull):
		return "queue_full"
	case errors.Is(err, queue.ErrShutdown):
		return "shutdown"
	default:
		return "other"
	}
}

// Notification fans a priority notification out to every worker whose
// priority set contains it. Workers filter and coalesce on their own
// bounded channels, so this never blocks the enqueueing goroutine.
func (p *Pool) Notification(prio types.Priority) {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	for _, w := range workers {
		w.Notify(prio)
	}
}

// Stats snapshots the queue.
func (p *Pool) Stats() types.QueueStats {
	return p.q.Stats()
}

// Pending returns the number of queued jobs.
func (p *Pool) Pending() int {
	return p.q.Len()
}

// Workers returns the number of attached workers.
func (p *Pool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Collaborators exposes the injected service bundle to consumers such
// as the topic router's script handlers.
func (p *Pool) Collaborators() types.Collaborators {
	return p.collab
}

func (p *Pool) archive(j *job.Job, cause error) {
	if p.spool == nil {
		return
	}
	if err := p.spool.Archive(j, cause); err != nil {
		p.logger.Error().Err(err).Str("job_id", j.ID()).Msg("dead letter archive failed")
		return
	}
	metrics.DeadLetters.Inc()
}
