package queue

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/types"
)

// mutexQueue is the coarse-lock variant: one mutex guards the
// per-priority FIFOs, a broadcast channel releases blocked dequeuers.
type mutexQueue struct {
	mu    sync.Mutex
	fifos map[types.Priority][]*job.Job
	size  int

	state      State
	pushLocked bool
	capacity   int

	// wake is closed and replaced on every enqueue and on Close, which
	// releases all blocked dequeuers to re-check the queue.
	wake chan struct{}

	notifyMu  sync.RWMutex
	notifiers []Notifier

	// Contention sampling for the adaptive strategy.
	attempts  atomic.Uint64
	contended atomic.Uint64

	logger zerolog.Logger
}

func newMutexQueue(opts Options) *mutexQueue {
	return &mutexQueue{
		fifos:    make(map[types.Priority][]*job.Job),
		capacity: opts.BoundedCapacity,
		wake:     make(chan struct{}),
		logger:   opts.Logger,
	}
}

func (q *mutexQueue) lock() {
	q.attempts.Add(1)
	if !q.mu.TryLock() {
		q.contended.Add(1)
		q.mu.Lock()
	}
}

// contention returns the sampled attempt and contended-lock counters.
func (q *mutexQueue) contention() (attempts, contended uint64) {
	return q.attempts.Load(), q.contended.Load()
}

// pushLockedFlag returns the raw flag without the shutdown-implied lock.
func (q *mutexQueue) pushLockedFlag() bool {
	q.lock()
	defer q.mu.Unlock()
	return q.pushLocked
}

func (q *mutexQueue) Enqueue(j *job.Job) error {
	q.lock()
	if err := q.enqueueLocked(j); err != nil {
		q.mu.Unlock()
		return err
	}
	q.wakeAllLocked()
	q.mu.Unlock()

	q.notify(j.Priority())
	return nil
}

func (q *mutexQueue) EnqueueBatch(jobs []*job.Job) (int, error) {
	accepted := 0
	for _, j := range jobs {
		if err := q.Enqueue(j); err != nil {
			return accepted, err
		}
		accepted++
	}
	return accepted, nil
}

func (q *mutexQueue) enqueueLocked(j *job.Job) error {
	if q.state == Closed {
		return ErrShutdown
	}
	if q.pushLocked || q.state == Draining {
		return ErrPushLocked
	}
	if q.capacity > 0 && q.size >= q.capacity {
		return ErrQueueFull
	}
	p := j.Priority()
	q.fifos[p] = append(q.fifos[p], j)
	q.size++
	return nil
}

func (q *mutexQueue) wakeAllLocked() {
	close(q.wake)
	q.wake = make(chan struct{})
}

func (q *mutexQueue) notify(p types.Priority) {
	q.notifyMu.RLock()
	defer q.notifyMu.RUnlock()
	for _, fn := range q.notifiers {
		fn(p)
	}
}

func (q *mutexQueue) Dequeue(primary types.Priority, fallbacks []types.Priority) *job.Job {
	q.lock()
	defer q.mu.Unlock()
	return q.dequeueLocked(primary, fallbacks)
}

func (q *mutexQueue) dequeueLocked(primary types.Priority, fallbacks []types.Priority) *job.Job {
	if q.state == Closed {
		return nil
	}
	if j := q.popLocked(primary); j != nil {
		return j
	}
	for _, p := range fallbacks {
		if j := q.popLocked(p); j != nil {
			return j
		}
	}
	return nil
}

func (q *mutexQueue) popLocked(p types.Priority) *job.Job {
	fifo := q.fifos[p]
	if len(fifo) == 0 {
		return nil
	}
	j := fifo[0]
	if len(fifo) == 1 {
		delete(q.fifos, p)
	} else {
		q.fifos[p] = fifo[1:]
	}
	q.size--
	return j
}

func (q *mutexQueue) DequeueBlocking(primary types.Priority, fallbacks []types.Priority, deadline time.Time) (*job.Job, error) {
	var timeout <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		q.lock()
		if q.state == Closed {
			q.mu.Unlock()
			return nil, ErrShutdown
		}
		if j := q.dequeueLocked(primary, fallbacks); j != nil {
			q.mu.Unlock()
			return j, nil
		}
		// Capture the wake channel before unlocking so an enqueue that
		// lands in between still releases this waiter.
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-wake:
		case <-timeout:
			return nil, ErrTimeout
		}
	}
}

func (q *mutexQueue) DequeueBatch(limit int) []*job.Job {
	q.lock()
	defer q.mu.Unlock()

	if q.state == Closed || limit <= 0 {
		return nil
	}

	prios := make([]types.Priority, 0, len(q.fifos))
	for p := range q.fifos {
		prios = append(prios, p)
	}
	sort.Slice(prios, func(i, k int) bool { return prios[i] > prios[k] })

	var out []*job.Job
	for _, p := range prios {
		for len(out) < limit {
			j := q.popLocked(p)
			if j == nil {
				break
			}
			out = append(out, j)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func (q *mutexQueue) Contains(primary types.Priority, fallbacks []types.Priority) bool {
	q.lock()
	defer q.mu.Unlock()
	if len(q.fifos[primary]) > 0 {
		return true
	}
	for _, p := range fallbacks {
		if len(q.fifos[p]) > 0 {
			return true
		}
	}
	return false
}

func (q *mutexQueue) SetPushLocked(locked bool) {
	q.lock()
	q.pushLocked = locked
	q.mu.Unlock()
}

func (q *mutexQueue) PushLocked() bool {
	q.lock()
	defer q.mu.Unlock()
	return q.pushLocked || q.state != Open
}

func (q *mutexQueue) Clear() {
	q.lock()
	q.fifos = make(map[types.Priority][]*job.Job)
	q.size = 0
	q.mu.Unlock()
}

func (q *mutexQueue) Len() int {
	q.lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *mutexQueue) State() State {
	q.lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *mutexQueue) IsShutdown() bool {
	return q.State() == Closed
}

func (q *mutexQueue) Drain() {
	q.lock()
	if q.state == Open {
		q.state = Draining
	}
	q.mu.Unlock()
}

func (q *mutexQueue) Close() {
	q.lock()
	if q.state == Closed {
		q.mu.Unlock()
		return
	}
	q.state = Closed
	q.fifos = make(map[types.Priority][]*job.Job)
	q.size = 0
	q.wakeAllLocked()
	q.mu.Unlock()

	if e := q.logger.Debug(); e.Enabled() {
		e.Msg("queue closed")
	}
}

func (q *mutexQueue) AddNotifier(fn Notifier) {
	q.notifyMu.Lock()
	q.notifiers = append(q.notifiers, fn)
	q.notifyMu.Unlock()
}

func (q *mutexQueue) Stats() types.QueueStats {
	q.lock()
	defer q.mu.Unlock()

	pending := make(map[types.Priority]int, len(q.fifos))
	for p, fifo := range q.fifos {
		if len(fifo) > 0 {
			pending[p] = len(fifo)
		}
	}
	return types.QueueStats{PendingPerPriority: pending}
}
