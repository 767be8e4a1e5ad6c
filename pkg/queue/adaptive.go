package queue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/types"
)

const (
	// adaptiveSampleEvery controls how often the contention sampler
	// runs, counted in enqueues.
	adaptiveSampleEvery = 512
	// adaptiveMinAttempts is the minimum lock-acquisition sample before
	// a migration decision is made.
	adaptiveMinAttempts = 4096
	// adaptiveContendedPct migrates once this share of lock attempts
	// found the mutex held.
	adaptiveContendedPct = 20
)

// adaptiveQueue starts on the coarse-lock variant and migrates once to
// the lock-free variant when the mutex shows sustained contention. The
// migration drains the old queue into the new one under the wrapper's
// write lock, so no operation observes a half-moved queue.
type adaptiveQueue struct {
	mu   sync.RWMutex
	impl Queue
	opts Options

	migrated  atomic.Bool
	enqueues  atomic.Uint64
	notifiers []Notifier
}

func newAdaptiveQueue(opts Options) *adaptiveQueue {
	return &adaptiveQueue{impl: newMutexQueue(opts), opts: opts}
}

// Migrated reports whether the lock-free variant took over.
func (q *adaptiveQueue) Migrated() bool { return q.migrated.Load() }

func (q *adaptiveQueue) Enqueue(j *job.Job) error {
	q.mu.RLock()
	err := q.impl.Enqueue(j)
	q.mu.RUnlock()

	if err == nil && !q.migrated.Load() &&
		q.enqueues.Add(1)%adaptiveSampleEvery == 0 {
		q.maybeMigrate()
	}
	return err
}

func (q *adaptiveQueue) maybeMigrate() {
	q.mu.Lock()
	defer q.mu.Unlock()

	mq, ok := q.impl.(*mutexQueue)
	if !ok {
		return
	}
	attempts, contended := mq.contention()
	if attempts < adaptiveMinAttempts || contended*100 < attempts*adaptiveContendedPct {
		return
	}
	q.migrateLocked(mq)
}

// maybeMigrateForTest forces the migration regardless of contention.
func (q *adaptiveQueue) maybeMigrateForTest() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if mq, ok := q.impl.(*mutexQueue); ok {
		q.migrateLocked(mq)
	}
}

func (q *adaptiveQueue) migrateLocked(mq *mutexQueue) {
	attempts, contended := mq.contention()
	lf := newLockFreeQueue(q.opts)
	for _, fn := range q.notifiers {
		lf.AddNotifier(fn)
	}

	// Drain before carrying over the push lock so the moved jobs are
	// accepted regardless of the lock state.
	moved := 0
	for {
		batch := mq.DequeueBatch(1024)
		if len(batch) == 0 {
			break
		}
		for _, j := range batch {
			lf.ringFor(j.Priority()).push(j)
			lf.total.Add(1)
			moved++
		}
	}

	switch mq.State() {
	case Draining:
		lf.Drain()
	case Closed:
		lf.Close()
	}
	lf.SetPushLocked(mq.pushLockedFlag())

	q.impl = lf
	q.migrated.Store(true)

	if e := q.opts.Logger.Info(); e.Enabled() {
		e.Int("moved", moved).
			Uint64("attempts", attempts).
			Uint64("contended", contended).
			Msg("queue migrated to lock-free under contention")
	}
}

func (q *adaptiveQueue) EnqueueBatch(jobs []*job.Job) (int, error) {
	accepted := 0
	for _, j := range jobs {
		if err := q.Enqueue(j); err != nil {
			return accepted, err
		}
		accepted++
	}
	return accepted, nil
}

func (q *adaptiveQueue) Dequeue(primary types.Priority, fallbacks []types.Priority) *job.Job {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.impl.Dequeue(primary, fallbacks)
}

func (q *adaptiveQueue) DequeueBlocking(primary types.Priority, fallbacks []types.Priority, deadline time.Time) (*job.Job, error) {
	for {
		q.mu.RLock()
		impl := q.impl
		q.mu.RUnlock()

		// Bound each inner wait so a migration in between is picked up.
		step := time.Now().Add(50 * time.Millisecond)
		if !deadline.IsZero() && deadline.Before(step) {
			step = deadline
		}
		j, err := impl.DequeueBlocking(primary, fallbacks, step)
		if err == ErrTimeout {
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return nil, ErrTimeout
			}
			continue
		}
		return j, err
	}
}

func (q *adaptiveQueue) DequeueBatch(limit int) []*job.Job {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.impl.DequeueBatch(limit)
}

func (q *adaptiveQueue) Contains(primary types.Priority, fallbacks []types.Priority) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.impl.Contains(primary, fallbacks)
}

func (q *adaptiveQueue) SetPushLocked(locked bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	q.impl.SetPushLocked(locked)
}

func (q *adaptiveQueue) PushLocked() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.impl.PushLocked()
}

func (q *adaptiveQueue) Clear() {
	q.mu.RLock()
	defer q.mu.RUnlock()
	q.impl.Clear()
}

func (q *adaptiveQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.impl.Len()
}

func (q *adaptiveQueue) State() State {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.impl.State()
}

func (q *adaptiveQueue) IsShutdown() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.impl.IsShutdown()
}

func (q *adaptiveQueue) Drain() {
	q.mu.RLock()
	defer q.mu.RUnlock()
	q.impl.Drain()
}

func (q *adaptiveQueue) Close() {
	q.mu.RLock()
	defer q.mu.RUnlock()
	q.impl.Close()
}

func (q *adaptiveQueue) AddNotifier(fn Notifier) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notifiers = append(q.notifiers, fn)
	q.impl.AddNotifier(fn)
}

func (q *adaptiveQueue) Stats() types.QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.impl.Stats()
}
