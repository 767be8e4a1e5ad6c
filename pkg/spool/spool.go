package spool

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/burrow/pkg/job"
	"github.com/cuemby/burrow/pkg/types"
)

var (
	// Bucket names
	bucketDeadLetters = []byte("dead_letters")
)

// Entry is one archived dead letter.
type Entry struct {
	ID         string
	Priority   types.Priority
	Payload    []byte
	Cause      string
	ArchivedAt time.Time
}

// Store is a BoltDB-backed dead-letter archive. It implements the
// pool's DeadLetter interface: failed jobs land here with their payload
// and failure cause, survive restarts, and can be replayed.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the spool database under dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "burrow.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open spool database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDeadLetters)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Archive stores a failed job with its in-memory payload. A job that
// failed in its work carrier was rehydrated first, so those bytes are the
// complete record; a job whose spill file could not be loaded is stored
// with an empty payload.
func (s *Store) Archive(j *job.Job, cause error) error {
	entry := &Entry{
		ID:         j.ID(),
		Priority:   j.Priority(),
		Payload:    j.Payload(),
		Cause:      cause.Error(),
		ArchivedAt: time.Now(),
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDeadLetters)
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put([]byte(entry.ID), data)
	})
}

// Get returns one dead letter by job id.
func (s *Store) Get(id string) (*Entry, error) {
	var entry Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDeadLetters)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("dead letter not found: %s", id)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns every archived dead letter.
func (s *Store) List() ([]*Entry, error) {
	var entries []*Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDeadLetters)
		return b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	return entries, err
}

// Delete removes one dead letter.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDeadLetters).Delete([]byte(id))
	})
}

// Purge drops every dead letter.
func (s *Store) Purge() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketDeadLetters); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketDeadLetters)
		return err
	})
}

// Count returns the number of archived dead letters.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketDeadLetters).Stats().KeyN
		return nil
	})
	return n, err
}

// Reenqueue replays one dead letter as a data-only job through the
// given requeuer (normally the pool) and deletes it on success.
func (s *Store) Reenqueue(id string, target job.Requeuer) error {
	entry, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := target.Push(job.DataOnly(entry.Priority, entry.Payload)); err != nil {
		return err
	}
	return s.Delete(id)
}
