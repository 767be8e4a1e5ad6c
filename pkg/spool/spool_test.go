package spool

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestArchiveAndGet(t *testing.T) {
	s := openStore(t)

	j := job.DataOnly(types.RealTime, []byte("payload"))
	require.NoError(t, s.Archive(j, errors.New("handler exploded")))

	entry, err := s.Get(j.ID())
	require.NoError(t, err)
	assert.Equal(t, j.ID(), entry.ID)
	assert.Equal(t, types.RealTime, entry.Priority)
	assert.Equal(t, []byte("payload"), entry.Payload)
	assert.Equal(t, "handler exploded", entry.Cause)
	assert.False(t, entry.ArchivedAt.IsZero())
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	_, err := s.Get("nope")
	assert.Error(t, err)
}

func TestListAndCount(t *testing.T) {
	s := openStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Archive(job.DataOnly(types.Batch, nil), errors.New("x")))
	}

	entries, err := s.List()
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestPurge(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Archive(job.DataOnly(types.Batch, nil), errors.New("x")))
	require.NoError(t, s.Purge())

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

type capturePush struct{ jobs []*job.Job }

func (c *capturePush) Push(j *job.Job) error {
	c.jobs = append(c.jobs, j)
	return nil
}

func TestReenqueue(t *testing.T) {
	s := openStore(t)

	j := job.DataOnly(types.Batch, []byte("try again"))
	require.NoError(t, s.Archive(j, errors.New("transient")))

	target := &capturePush{}
	require.NoError(t, s.Reenqueue(j.ID(), target))

	require.Len(t, target.jobs, 1)
	assert.Equal(t, []byte("try again"), target.jobs[0].Payload())
	assert.Equal(t, types.Batch, target.jobs[0].Priority())

	_, err := s.Get(j.ID())
	assert.Error(t, err, "replayed entry is removed")
}

type failingPush struct{}

func (failingPush) Push(*job.Job) error { return errors.New("queue full") }

func TestReenqueueKeepsEntryOnPushFailure(t *testing.T) {
	s := openStore(t)

	j := job.DataOnly(types.Batch, nil)
	require.NoError(t, s.Archive(j, errors.New("x")))
	require.Error(t, s.Reenqueue(j.ID(), failingPush{}))

	_, err := s.Get(j.ID())
	assert.NoError(t, err, "entry survives a failed replay")
}
