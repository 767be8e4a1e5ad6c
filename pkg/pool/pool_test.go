package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/worker"
)

var nop = zerolog.Nop()

func newTestPool(t *testing.T, strategy types.QueueStrategy) *Pool {
	t.Helper()
	p := New(Options{
		Queue:  queue.Options{Strategy: strategy},
		Logger: nop,
	})
	t.Cleanup(p.Close)
	return p
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPushExecutes(t *testing.T) {
	p := newTestPool(t, types.StrategyMutex)
	require.NoError(t, p.Append(worker.New("w1", types.Batch, nil, nop), false))
	require.NoError(t, p.Start())

	var ran atomic.Bool
	require.NoError(t, p.Push(job.Callback(types.Batch, func() error {
		ran.Store(true)
		return nil
	})))

	waitFor(t, 2*time.Second, ran.Load)
}

// TestPriorityPreemption runs one worker with a high-priority primary
// and two lower fallbacks: a later high-priority job overtakes older
// lower-priority ones.
func TestPriorityPreemption(t *testing.T) {
	p := newTestPool(t, types.StrategyMutex)

	var mu sync.Mutex
	var order []string
	record := func(tag string) func() error {
		return func() error {
			mu.Lock()
			order = append(order, tag)
			mu.Unlock()
			return nil
		}
	}

	// Push before starting workers so the queue decides the order, not
	// the race between producer and consumers.
	require.NoError(t, p.Push(job.Callback(types.Background, record("low"))))
	require.NoError(t, p.Push(job.Callback(types.Batch, record("normal"))))
	require.NoError(t, p.Push(job.Callback(types.RealTime, record("high"))))

	// One worker that can see all three priorities, highest first.
	require.NoError(t, p.Append(worker.New("w3", types.RealTime,
		[]types.Priority{types.Batch, types.Background}, nop), false))
	require.NoError(t, p.Start())

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"high", "normal", "low"}, order)
}

// TestHighPriorityExecutedByExactlyOneWorker checks that multiple
// eligible workers do not double-execute.
func TestHighPriorityExecutedByExactlyOneWorker(t *testing.T) {
	p := newTestPool(t, types.StrategyLockFree)

	var executions atomic.Int64
	require.NoError(t, p.Append(worker.New("w1", types.RealTime, nil, nop), false))
	require.NoError(t, p.Append(worker.New("w2", types.Batch,
		[]types.Priority{types.RealTime}, nop), false))
	require.NoError(t, p.Append(worker.New("w3", types.Background,
		[]types.Priority{types.RealTime, types.Batch}, nop), false))
	require.NoError(t, p.Start())

	for i := 0; i < 50; i++ {
		require.NoError(t, p.Push(job.Callback(types.RealTime, func() error {
			executions.Add(1)
			return nil
		})))
	}

	waitFor(t, 2*time.Second, func() bool { return executions.Load() == 50 })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(50), executions.Load(), "no duplicate executions")
}

// TestWorkerNeverExecutesOutsideItsSet: a worker that only lists
// background never runs realtime work.
func TestWorkerNeverExecutesOutsideItsSet(t *testing.T) {
	p := newTestPool(t, types.StrategyMutex)

	w := worker.New("bg-only", types.Background, nil, nop)
	require.NoError(t, p.Append(w, false))
	require.NoError(t, p.Start())

	var ran atomic.Bool
	require.NoError(t, p.Push(job.Callback(types.RealTime, func() error {
		ran.Store(true)
		return nil
	})))

	time.Sleep(100 * time.Millisecond)
	assert.False(t, ran.Load(), "realtime job must stay queued")
	assert.Equal(t, 1, p.Pending())
	assert.Equal(t, uint64(0), w.Executed())
}

// TestStopDrainCompletesEverything mirrors the drain-on-stop scenario:
// every accepted job runs before Stop returns.
func TestStopDrainCompletesEverything(t *testing.T) {
	p := New(Options{Queue: queue.Options{Strategy: types.StrategyMutex}, Logger: nop})

	var done atomic.Int64
	for i := 0; i < 1000; i++ {
		require.NoError(t, p.Push(job.Callback(types.Batch, func() error {
			done.Add(1)
			return nil
		})))
	}

	for i := 0; i < 4; i++ {
		require.NoError(t, p.Append(worker.New("w", types.Batch, nil, nop), false))
	}
	require.NoError(t, p.Start())

	p.Stop(true)
	assert.Equal(t, int64(1000), done.Load(), "stop(drain) returns only after all jobs ran")
	assert.Equal(t, 0, p.Pending())
}

// TestStopNoDrainDropsRemainder mirrors the abort-on-stop scenario.
func TestStopNoDrainDropsRemainder(t *testing.T) {
	p := New(Options{Queue: queue.Options{Strategy: types.StrategyMutex}, Logger: nop})

	var done atomic.Int64
	for i := 0; i < 200; i++ {
		require.NoError(t, p.Push(job.Callback(types.Batch, func() error {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
			return nil
		})))
	}

	require.NoError(t, p.Append(worker.New("w", types.Batch, nil, nop), false))
	require.NoError(t, p.Start())

	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	p.Stop(false)
	elapsed := time.Since(start)

	completed := done.Load()
	assert.Greater(t, completed, int64(0), "some jobs completed before the stop")
	assert.Less(t, completed, int64(200), "the remainder was dropped")
	assert.Less(t, elapsed, time.Second, "stop returns within about one job duration")
	assert.Equal(t, 0, p.Pending(), "queue cleared on close")
}

// TestPushRejectedAfterStop: pushes fail as soon as Stop is invoked,
// drain or not.
func TestPushRejectedAfterStop(t *testing.T) {
	p := newTestPool(t, types.StrategyMutex)
	require.NoError(t, p.Append(worker.New("w", types.Batch, nil, nop), true))

	p.Stop(true)
	err := p.Push(job.DataOnly(types.Batch, nil))
	require.Error(t, err)
}

func TestZeroWorkerPoolAccumulates(t *testing.T) {
	p := newTestPool(t, types.StrategyMutex)
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Push(job.DataOnly(types.Batch, nil)))
	}
	assert.Equal(t, 100, p.Pending())
}

// TestRequeueFromWork: a work method re-enqueues a follow-up through
// the weak handle and a worker picks it up.
func TestRequeueFromWork(t *testing.T) {
	p := newTestPool(t, types.StrategyMutex)
	require.NoError(t, p.Append(worker.New("w", types.Batch, nil, nop), false))
	require.NoError(t, p.Start())

	var followedUp atomic.Bool
	var first *job.Job
	first = job.Override(types.Batch, nil, job.WorkFunc(func(types.Priority, []byte) error {
		return first.Requeue(job.Callback(types.Batch, func() error {
			followedUp.Store(true)
			return nil
		}))
	}))

	require.NoError(t, p.Push(first))
	waitFor(t, 2*time.Second, followedUp.Load)
}

// TestRequeueAfterPoolGoneDropsSilently: the handle is invalidated on
// stop, so late follow-ups disappear without error.
func TestRequeueAfterPoolGoneDropsSilently(t *testing.T) {
	p := New(Options{Queue: queue.Options{Strategy: types.StrategyMutex}, Logger: nop})

	j := job.DataOnly(types.Batch, nil)
	require.NoError(t, p.Push(j))
	p.Stop(false)

	assert.NoError(t, j.Requeue(job.DataOnly(types.Batch, nil)))
	assert.Equal(t, 0, p.Pending())
}

// TestFailingJobDoesNotKillWorker: user faults are logged and the
// worker keeps executing.
func TestFailingJobDoesNotKillWorker(t *testing.T) {
	p := newTestPool(t, types.StrategyMutex)
	w := worker.New("w", types.Batch, nil, nop)
	require.NoError(t, p.Append(w, false))
	require.NoError(t, p.Start())

	require.NoError(t, p.Push(job.Callback(types.Batch, func() error {
		panic("handler exploded")
	})))
	var ran atomic.Bool
	require.NoError(t, p.Push(job.Callback(types.Batch, func() error {
		ran.Store(true)
		return nil
	})))

	waitFor(t, 2*time.Second, ran.Load)
	assert.Equal(t, uint64(1), w.Failed())
	assert.Equal(t, uint64(2), w.Executed())
}

type memorySpool struct {
	mu    sync.Mutex
	items []string
}

func (m *memorySpool) Archive(j *job.Job, cause error) error {
	m.mu.Lock()
	m.items = append(m.items, j.ID())
	m.mu.Unlock()
	return nil
}

func TestFailedJobsArchivedToSpool(t *testing.T) {
	spool := &memorySpool{}
	p := New(Options{
		Queue:  queue.Options{Strategy: types.StrategyMutex},
		Spool:  spool,
		Logger: nop,
	})
	t.Cleanup(p.Close)

	require.NoError(t, p.Append(worker.New("w", types.Batch, nil, nop), true))
	require.NoError(t, p.Push(job.Callback(types.Batch, func() error {
		panic("dead letter me")
	})))

	waitFor(t, 2*time.Second, func() bool {
		spool.mu.Lock()
		defer spool.mu.Unlock()
		return len(spool.items) == 1
	})
}

func TestSpillOnPush(t *testing.T) {
	dir := t.TempDir()
	p := New(Options{
		Queue:          queue.Options{Strategy: types.StrategyMutex},
		Collaborators:  types.Collaborators{ScratchDir: dir},
		SpillEnabled:   true,
		SpillThreshold: 8,
		Logger:         nop,
	})
	t.Cleanup(p.Close)

	big := job.DataOnly(types.Batch, make([]byte, 100))
	require.NoError(t, p.Push(big))
	assert.True(t, big.Spilled())

	small := job.DataOnly(types.Batch, []byte("tiny"))
	require.NoError(t, p.Push(small))
	assert.False(t, small.Spilled())
}
