package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/types"
)

var nop = zerolog.Nop()

func newQueue() queue.Queue {
	return queue.New(queue.Options{Strategy: types.StrategyMutex})
}

func notifyOn(q queue.Queue, w *Worker) {
	q.AddNotifier(w.Notify)
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

func TestStartRequiresQueue(t *testing.T) {
	w := New("w", types.Batch, nil, nop)
	assert.ErrorIs(t, w.Start(), ErrNoQueue)
}

func TestDoubleStart(t *testing.T) {
	w := New("w", types.Batch, nil, nop)
	w.SetQueue(newQueue())
	require.NoError(t, w.Start())
	assert.ErrorIs(t, w.Start(), ErrAlreadyStarted)
	w.Stop(false)
	w.Join()
}

func TestJoinWithoutStart(t *testing.T) {
	w := New("w", types.Batch, nil, nop)
	w.Stop(false)
	w.Join() // must not hang
	assert.Equal(t, StateNew, w.State())
}

func TestMatches(t *testing.T) {
	w := New("w", types.Batch, []types.Priority{types.RealTime}, nop)
	assert.True(t, w.Matches(types.Batch))
	assert.True(t, w.Matches(types.RealTime))
	assert.False(t, w.Matches(types.Background))
}

func TestExecutesNotifiedJob(t *testing.T) {
	q := newQueue()
	w := New("w", types.Batch, nil, nop)
	w.SetQueue(q)
	notifyOn(q, w)
	require.NoError(t, w.Start())
	defer func() { w.Stop(false); w.Join() }()

	var ran atomic.Bool
	require.NoError(t, q.Enqueue(job.Callback(types.Batch, func() error {
		ran.Store(true)
		return nil
	})))

	waitFor(t, 2*time.Second, ran.Load)
	assert.Equal(t, uint64(1), w.Executed())
}

func TestFallbackNotificationWakes(t *testing.T) {
	q := newQueue()
	// Primary batch, fallback realtime: a realtime notification must
	// still wake this worker.
	w := New("w", types.Batch, []types.Priority{types.RealTime}, nop)
	w.SetQueue(q)
	notifyOn(q, w)
	require.NoError(t, w.Start())
	defer func() { w.Stop(false); w.Join() }()

	var ran atomic.Bool
	require.NoError(t, q.Enqueue(job.Callback(types.RealTime, func() error {
		ran.Store(true)
		return nil
	})))

	waitFor(t, 2*time.Second, ran.Load)
}

func TestUnrelatedNotificationDoesNotWake(t *testing.T) {
	q := newQueue()
	w := New("w", types.Batch, nil, nop)
	w.SetQueue(q)
	notifyOn(q, w)
	require.NoError(t, w.Start())
	defer func() { w.Stop(false); w.Join() }()

	// Background work the worker cannot take.
	require.NoError(t, q.Enqueue(job.DataOnly(types.Background, nil)))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, uint64(0), w.Executed())
	assert.Equal(t, StateWaiting, w.State(), "worker stays parked")
	assert.Equal(t, 1, q.Len())
}

func TestStopDrainFinishesBacklog(t *testing.T) {
	q := newQueue()
	w := New("w", types.Batch, nil, nop)
	w.SetQueue(q)
	notifyOn(q, w)

	var done atomic.Int64
	for i := 0; i < 50; i++ {
		require.NoError(t, q.Enqueue(job.Callback(types.Batch, func() error {
			done.Add(1)
			return nil
		})))
	}

	require.NoError(t, w.Start())
	w.Stop(true)
	w.Join()

	assert.Equal(t, int64(50), done.Load())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, StateStopped, w.State())
}

func TestStopNoDrainExitsQuickly(t *testing.T) {
	q := newQueue()
	w := New("w", types.Batch, nil, nop)
	w.SetQueue(q)
	notifyOn(q, w)

	for i := 0; i < 100; i++ {
		require.NoError(t, q.Enqueue(job.Callback(types.Batch, func() error {
			time.Sleep(5 * time.Millisecond)
			return nil
		})))
	}

	require.NoError(t, w.Start())
	time.Sleep(20 * time.Millisecond)
	w.Stop(false)
	w.Join()

	assert.Less(t, w.Executed(), uint64(100), "backlog abandoned")
	assert.Greater(t, q.Len(), 0)
}

func TestUserFaultDoesNotStopWorker(t *testing.T) {
	q := newQueue()
	w := New("w", types.Batch, nil, nop)
	w.SetQueue(q)
	notifyOn(q, w)
	require.NoError(t, w.Start())
	defer func() { w.Stop(false); w.Join() }()

	require.NoError(t, q.Enqueue(job.Callback(types.Batch, func() error {
		panic("boom")
	})))
	var ran atomic.Bool
	require.NoError(t, q.Enqueue(job.Callback(types.Batch, func() error {
		ran.Store(true)
		return nil
	})))

	waitFor(t, 2*time.Second, ran.Load)
	assert.Equal(t, uint64(1), w.Failed())
}

func TestFaultHook(t *testing.T) {
	q := newQueue()
	w := New("w", types.Batch, nil, nop)
	w.SetQueue(q)
	notifyOn(q, w)

	var hooked atomic.Bool
	w.SetFaultHook(func(j *job.Job, err error) {
		hooked.Store(true)
	})
	require.NoError(t, w.Start())
	defer func() { w.Stop(false); w.Join() }()

	require.NoError(t, q.Enqueue(job.Callback(types.Batch, func() error {
		panic("dead letter")
	})))

	waitFor(t, 2*time.Second, hooked.Load)
}
