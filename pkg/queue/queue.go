package queue

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/types"
)

var (
	// ErrPushLocked reports an enqueue attempted while the push lock is
	// engaged.
	ErrPushLocked = errors.New("queue push locked")

	// ErrQueueFull reports a bounded queue at capacity.
	ErrQueueFull = errors.New("queue full")

	// ErrShutdown reports an operation on a closed queue.
	ErrShutdown = errors.New("queue shut down")

	// ErrTimeout reports a blocking dequeue that hit its deadline.
	ErrTimeout = errors.New("queue dequeue timed out")
)

// State is the queue's shutdown phase. Transitions are one-way:
// Open → Draining → Closed.
type State int32

const (
	// Open accepts enqueues and dequeues.
	Open State = iota
	// Draining rejects enqueues; existing jobs remain dequeueable.
	Draining
	// Closed rejects everything and has released all waiters.
	Closed
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Notifier is invoked after every successful enqueue with the enqueued
// priority. Notifiers run synchronously on the enqueueing goroutine and
// must not block; the pool's notifier only performs non-blocking channel
// sends.
type Notifier func(p types.Priority)

// Queue is the multi-priority job queue contract shared by the mutex,
// lock-free and adaptive implementations.
//
// Ordering: FIFO within a priority. Across priorities the dequeue
// visitor follows the caller-supplied order [primary, fallbacks...];
// there is no global age ordering.
type Queue interface {
	// Enqueue adds a job, failing with ErrPushLocked, ErrQueueFull or
	// ErrShutdown.
	Enqueue(j *job.Job) error

	// EnqueueBatch adds jobs atomically per job and reports how many
	// were accepted. The first failure stops the batch.
	EnqueueBatch(jobs []*job.Job) (int, error)

	// Dequeue attempts priorities in order and returns the oldest job
	// of the first non-empty FIFO, or nil.
	Dequeue(primary types.Priority, fallbacks []types.Priority) *job.Job

	// DequeueBlocking waits until a matching job arrives, the deadline
	// passes (ErrTimeout) or the queue closes (ErrShutdown). A zero
	// deadline waits indefinitely.
	DequeueBlocking(primary types.Priority, fallbacks []types.Priority, deadline time.Time) (*job.Job, error)

	// DequeueBatch removes up to limit jobs across all priorities in
	// descending priority order.
	DequeueBatch(limit int) []*job.Job

	// Contains reports whether any of the given priorities has a
	// pending job, using the same visiting order as Dequeue.
	Contains(primary types.Priority, fallbacks []types.Priority) bool

	// SetPushLocked engages or releases the push lock. While locked,
	// Enqueue fails with ErrPushLocked.
	SetPushLocked(locked bool)

	// PushLocked reports the effective push lock, including the one
	// implied by Draining and Closed.
	PushLocked() bool

	// Clear drops every pending job.
	Clear()

	// Len returns the number of pending jobs.
	Len() int

	// State returns the current shutdown phase.
	State() State

	// IsShutdown reports whether the queue reached Closed.
	IsShutdown() bool

	// Drain moves Open → Draining: enqueues are rejected, pending jobs
	// stay dequeueable.
	Drain()

	// Close moves to Closed: pending jobs are dropped and every waiter
	// is released with ErrShutdown.
	Close()

	// AddNotifier registers a callback invoked after each successful
	// enqueue.
	AddNotifier(fn Notifier)

	// Stats returns a snapshot of occupancy and reclamation counters.
	Stats() types.QueueStats
}

// Options configures queue construction.
type Options struct {
	// Strategy selects the implementation. Defaults to adaptive.
	Strategy types.QueueStrategy

	// BoundedCapacity caps pending jobs; 0 means unbounded.
	BoundedCapacity int

	// SegmentSize is the ring size of lock-free segments. Defaults to
	// 256 slots.
	SegmentSize int

	// RetireFactor tunes the reclamation scan trigger: a scan runs when
	// retired > reclaimed*RetireFactor. Defaults to 2.
	RetireFactor uint64

	Logger zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = types.StrategyAdaptive
	}
	if o.SegmentSize <= 0 {
		o.SegmentSize = 256
	}
	if o.RetireFactor == 0 {
		o.RetireFactor = 2
	}
	return o
}

// New constructs a queue for the given options.
func New(opts Options) Queue {
	opts = opts.withDefaults()
	switch opts.Strategy {
	case types.StrategyMutex:
		return newMutexQueue(opts)
	case types.StrategyLockFree:
		return newLockFreeQueue(opts)
	default:
		return newAdaptiveQueue(opts)
	}
}
