/*
Package spool provides a BoltDB-backed dead-letter archive.

When a job fails with a user fault, the pool hands it to the spool; the
entry records the job id, priority, payload bytes and failure cause,
and survives process restarts. Operators inspect, replay or purge dead
letters through the CLI.

# Architecture

	┌──────────────────── DEAD-LETTER SPOOL ───────────────────┐
	│                                                           │
	│  Worker ── user fault ──► Pool ── Archive ──► BoltDB      │
	│                                                           │
	│  bucket "dead_letters":                                   │
	│    key:   job id                                          │
	│    value: JSON {id, priority, payload, cause, time}       │
	│                                                           │
	│  List / Get / Delete / Purge / Count                      │
	│  Reenqueue(id, pool) ── replay as data-only job           │
	└───────────────────────────────────────────────────────────┘

# Usage

	store, err := spool.Open("/var/lib/burrow")
	if err != nil {
		return err
	}
	defer store.Close()

	p := pool.New(pool.Options{Spool: store, ...})

	// Later, replay everything that failed:
	entries, _ := store.List()
	for _, e := range entries {
		_ = store.Reenqueue(e.ID, p)
	}

# Integration Points

  - pkg/pool: Archive is the pool's DeadLetter hook
  - pkg/job: replays go back in as data-only jobs
  - cmd/burrow: operator commands over the archive
*/
package spool
