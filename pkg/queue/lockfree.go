package queue

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/types"
)

// lockFreeQueue is the lock-free variant: one segmented MPMC ring per
// priority. Producers reserve slots with a fetch-add on the tail
// segment and link fresh segments with CAS; consumers reserve with CAS
// on the head segment's dequeue index and take slots with an atomic
// swap, which rules out duplicates. Fully consumed segments are retired
// into an epoch-style reclaimer whose counters are observable through
// Stats.
//
// Go's garbage collector already guarantees memory safety for retired
// segments; the reclaimer exists to bound how many drained segments
// stay reachable and to expose retirement progress.
type lockFreeQueue struct {
	segSize  int
	capacity int

	rings sync.Map // types.Priority -> *ring
	total atomic.Int64

	state      atomic.Int32 // State
	pushLocked atomic.Bool

	wakeMu sync.Mutex
	wake   chan struct{}

	notifyMu  sync.RWMutex
	notifiers []Notifier

	rec reclaimer

	logger zerolog.Logger
}

func newLockFreeQueue(opts Options) *lockFreeQueue {
	q := &lockFreeQueue{
		segSize:  opts.SegmentSize,
		capacity: opts.BoundedCapacity,
		wake:     make(chan struct{}),
		logger:   opts.Logger,
	}
	q.rec.factor = opts.RetireFactor
	return q
}

type segment struct {
	slots []atomic.Pointer[job.Job]
	enq   atomic.Int64 // next producer index; >= len(slots) means full
	deq   atomic.Int64 // next consumer index
	next  atomic.Pointer[segment]
}

func newSegment(size int) *segment {
	return &segment{slots: make([]atomic.Pointer[job.Job], size)}
}

type ring struct {
	segSize int
	head    atomic.Pointer[segment]
	tail    atomic.Pointer[segment]
	size    atomic.Int64
}

func newRing(segSize int) *ring {
	r := &ring{segSize: segSize}
	seg := newSegment(segSize)
	r.head.Store(seg)
	r.tail.Store(seg)
	return r
}

// push reserves a slot at the tail, linking a new segment when the
// current one is exhausted.
func (r *ring) push(j *job.Job) {
	for {
		tail := r.tail.Load()
		i := tail.enq.Add(1) - 1
		if i < int64(r.segSize) {
			tail.slots[i].Store(j)
			r.size.Add(1)
			return
		}

		next := tail.next.Load()
		if next == nil {
			fresh := newSegment(r.segSize)
			fresh.enq.Store(1)
			fresh.slots[0].Store(j)
			if tail.next.CompareAndSwap(nil, fresh) {
				r.tail.CompareAndSwap(tail, fresh)
				r.size.Add(1)
				return
			}
			// Another producer linked first; chase the new tail.
			next = tail.next.Load()
		}
		r.tail.CompareAndSwap(tail, next)
	}
}

// pop takes the oldest job, or returns nil when the ring is empty.
// Drained segments are handed to the reclaimer.
func (r *ring) pop(rec *reclaimer) *job.Job {
	for {
		head := r.head.Load()
		for {
			d := head.deq.Load()
			if d >= int64(r.segSize) {
				break // segment fully consumed, advance below
			}
			e := head.enq.Load()
			if e > int64(r.segSize) {
				e = int64(r.segSize)
			}
			if d >= e {
				// Producers only link a successor after filling this
				// segment, so an empty reservation window means an
				// empty ring.
				return nil
			}
			if head.deq.CompareAndSwap(d, d+1) {
				// The producer that reserved slot d may not have
				// stored yet; spin until the handoff lands.
				for {
					if j := head.slots[d].Swap(nil); j != nil {
						r.size.Add(-1)
						return j
					}
					runtime.Gosched()
				}
			}
		}

		next := head.next.Load()
		if next == nil {
			return nil
		}
		if r.head.CompareAndSwap(head, next) {
			rec.retire(head)
		}
	}
}

// reclaimer is an epoch-style retirement list for drained segments.
// Retired segments are dropped in batches once no other dequeuer is
// inside the critical region, which keeps the reachable backlog bounded and
// the counters observable.
type reclaimer struct {
	mu      sync.Mutex
	backlog []*segment

	readers   atomic.Int64
	retired   atomic.Uint64
	reclaimed atomic.Uint64
	factor    uint64
}

func (rc *reclaimer) enter() { rc.readers.Add(1) }
func (rc *reclaimer) exit()  { rc.readers.Add(-1) }

func (rc *reclaimer) retire(s *segment) {
	rc.mu.Lock()
	rc.backlog = append(rc.backlog, s)
	rc.mu.Unlock()
	rc.retired.Add(1)

	if rc.retired.Load() > rc.reclaimed.Load()*rc.factor {
		rc.scan()
	}
}

// scan releases the backlog when no other reader pins an older view.
// retire only runs inside a dequeuer's own enter/exit region, so that
// caller's registration is not counted. A busy moment defers the scan;
// the next retire retries.
func (rc *reclaimer) scan() {
	if rc.readers.Load() > 1 {
		return
	}
	rc.mu.Lock()
	n := len(rc.backlog)
	rc.backlog = nil
	rc.mu.Unlock()
	rc.reclaimed.Add(uint64(n))
}

func (q *lockFreeQueue) ringFor(p types.Priority) *ring {
	if r, ok := q.rings.Load(p); ok {
		return r.(*ring)
	}
	r, _ := q.rings.LoadOrStore(p, newRing(q.segSize))
	return r.(*ring)
}

func (q *lockFreeQueue) peekRing(p types.Priority) *ring {
	if r, ok := q.rings.Load(p); ok {
		return r.(*ring)
	}
	return nil
}

func (q *lockFreeQueue) Enqueue(j *job.Job) error {
	switch State(q.state.Load()) {
	case Closed:
		return ErrShutdown
	case Draining:
		return ErrPushLocked
	}
	if q.pushLocked.Load() {
		return ErrPushLocked
	}
	if q.capacity > 0 {
		if n := q.total.Add(1); n > int64(q.capacity) {
			q.total.Add(-1)
			return ErrQueueFull
		}
	} else {
		q.total.Add(1)
	}

	q.ringFor(j.Priority()).push(j)
	q.wakeAll()
	q.notify(j.Priority())
	return nil
}

func (q *lockFreeQueue) EnqueueBatch(jobs []*job.Job) (int, error) {
	accepted := 0
	for _, j := range jobs {
		if err := q.Enqueue(j); err != nil {
			return accepted, err
		}
		accepted++
	}
	return accepted, nil
}

func (q *lockFreeQueue) Dequeue(primary types.Priority, fallbacks []types.Priority) *job.Job {
	if State(q.state.Load()) == Closed {
		return nil
	}
	q.rec.enter()
	defer q.rec.exit()

	if r := q.peekRing(primary); r != nil {
		if j := r.pop(&q.rec); j != nil {
			q.total.Add(-1)
			return j
		}
	}
	for _, p := range fallbacks {
		if r := q.peekRing(p); r != nil {
			if j := r.pop(&q.rec); j != nil {
				q.total.Add(-1)
				return j
			}
		}
	}
	return nil
}

func (q *lockFreeQueue) DequeueBlocking(primary types.Priority, fallbacks []types.Priority, deadline time.Time) (*job.Job, error) {
	var timeout <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		if State(q.state.Load()) == Closed {
			return nil, ErrShutdown
		}
		if j := q.Dequeue(primary, fallbacks); j != nil {
			return j, nil
		}

		q.wakeMu.Lock()
		wake := q.wake
		q.wakeMu.Unlock()

		// Re-check after capturing the channel: an enqueue between the
		// failed attempt and the capture already swapped the channel,
		// so the capture sees either the job or an open channel that a
		// later enqueue will close.
		if j := q.Dequeue(primary, fallbacks); j != nil {
			return j, nil
		}
		if State(q.state.Load()) == Closed {
			return nil, ErrShutdown
		}

		select {
		case <-wake:
		case <-timeout:
			return nil, ErrTimeout
		}
	}
}

func (q *lockFreeQueue) DequeueBatch(limit int) []*job.Job {
	if limit <= 0 || State(q.state.Load()) == Closed {
		return nil
	}
	q.rec.enter()
	defer q.rec.exit()

	prios := q.knownPriorities()
	var out []*job.Job
	for _, p := range prios {
		r := q.peekRing(p)
		if r == nil {
			continue
		}
		for len(out) < limit {
			j := r.pop(&q.rec)
			if j == nil {
				break
			}
			q.total.Add(-1)
			out = append(out, j)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func (q *lockFreeQueue) knownPriorities() []types.Priority {
	var prios []types.Priority
	q.rings.Range(func(k, _ any) bool {
		prios = append(prios, k.(types.Priority))
		return true
	})
	sort.Slice(prios, func(i, k int) bool { return prios[i] > prios[k] })
	return prios
}

func (q *lockFreeQueue) Contains(primary types.Priority, fallbacks []types.Priority) bool {
	if r := q.peekRing(primary); r != nil && r.size.Load() > 0 {
		return true
	}
	for _, p := range fallbacks {
		if r := q.peekRing(p); r != nil && r.size.Load() > 0 {
			return true
		}
	}
	return false
}

func (q *lockFreeQueue) SetPushLocked(locked bool) {
	q.pushLocked.Store(locked)
}

func (q *lockFreeQueue) PushLocked() bool {
	return q.pushLocked.Load() || State(q.state.Load()) != Open
}

func (q *lockFreeQueue) Clear() {
	q.rec.enter()
	defer q.rec.exit()
	q.rings.Range(func(_, v any) bool {
		r := v.(*ring)
		for {
			if j := r.pop(&q.rec); j == nil {
				break
			}
			q.total.Add(-1)
		}
		return true
	})
}

func (q *lockFreeQueue) Len() int {
	return int(q.total.Load())
}

func (q *lockFreeQueue) State() State {
	return State(q.state.Load())
}

func (q *lockFreeQueue) IsShutdown() bool {
	return State(q.state.Load()) == Closed
}

func (q *lockFreeQueue) Drain() {
	q.state.CompareAndSwap(int32(Open), int32(Draining))
}

func (q *lockFreeQueue) Close() {
	prev := State(q.state.Swap(int32(Closed)))
	if prev == Closed {
		return
	}
	q.Clear()
	q.wakeAll()

	if e := q.logger.Debug(); e.Enabled() {
		e.Msg("queue closed")
	}
}

func (q *lockFreeQueue) AddNotifier(fn Notifier) {
	q.notifyMu.Lock()
	q.notifiers = append(q.notifiers, fn)
	q.notifyMu.Unlock()
}

func (q *lockFreeQueue) notify(p types.Priority) {
	q.notifyMu.RLock()
	defer q.notifyMu.RUnlock()
	for _, fn := range q.notifiers {
		fn(p)
	}
}

func (q *lockFreeQueue) wakeAll() {
	q.wakeMu.Lock()
	close(q.wake)
	q.wake = make(chan struct{})
	q.wakeMu.Unlock()
}

func (q *lockFreeQueue) Stats() types.QueueStats {
	pending := make(map[types.Priority]int)
	q.rings.Range(func(k, v any) bool {
		if n := v.(*ring).size.Load(); n > 0 {
			pending[k.(types.Priority)] = int(n)
		}
		return true
	})
	return types.QueueStats{
		PendingPerPriority: pending,
		RetiredNodes:       q.rec.retired.Load(),
		ReclaimedNodes:     q.rec.reclaimed.Load(),
	}
}
