/*
Package types defines the shared vocabulary of the Burrow engine.

The types package holds the small set of definitions every other package
speaks: job priorities, queue strategies, queue statistics, and the
collaborator interfaces the engine consumes without implementing. It has no
dependencies of its own, which keeps it importable from anywhere in the tree
without cycles.

# Architecture

	┌─────────────────── SHARED TYPES ───────────────────┐
	│                                                     │
	│  ┌───────────────────────────────────────┐         │
	│  │           Priority                     │         │
	│  │  - Totally ordered int32 tag           │         │
	│  │  - Background(10) < Batch(50)          │         │
	│  │    < RealTime(90)                      │         │
	│  │  - Open set: embedders may add values  │         │
	│  └───────────────────────────────────────┘         │
	│                                                     │
	│  ┌───────────────────────────────────────┐         │
	│  │           QueueStrategy                │         │
	│  │  - mutex:    coarse lock + wake chan   │         │
	│  │  - lockfree: segmented MPMC rings      │         │
	│  │  - adaptive: mutex until contention    │         │
	│  └───────────────────────────────────────┘         │
	│                                                     │
	│  ┌───────────────────────────────────────┐         │
	│  │           Collaborators                │         │
	│  │  - Clock (required, defaulted)         │         │
	│  │  - Compressor / Encryptor (spill)      │         │
	│  │  - ScriptHost (handler hook)           │         │
	│  │  - ScratchDir (spill directory)        │         │
	│  └───────────────────────────────────────┘         │
	└─────────────────────────────────────────────────────┘

# Core Components

Priority:
  - int32-backed ordered tag carried by every job
  - Three built-in levels with gaps so embedders can slot custom values
  - String()/ParsePriority() round-trip the built-in names

QueueStrategy:
  - Selects the queue implementation at pool construction
  - "adaptive" starts on mutex and migrates under sustained contention

QueueStats:
  - Snapshot of pending jobs per priority
  - RetiredNodes/ReclaimedNodes expose lock-free segment reclamation

Collaborators:
  - Injected service bundle; replaces process-wide singletons
  - Zero values disable optional features (compression, encryption, scripts)
  - WithDefaults() fills the clock so callers can pass a zero struct

# Usage

Building a collaborator bundle for a pool:

	collab := types.Collaborators{
		ScratchDir: "/var/lib/burrow/spill",
		Compressor: compress.New(compress.DefaultBlockSize),
	}.WithDefaults()

Custom priorities:

	const Bulk types.Priority = 25 // between Background and Batch

# Integration Points

This package integrates with:

  - pkg/job: priorities and spill collaborators
  - pkg/queue: strategies and stats snapshots
  - pkg/pool: collaborator injection at construction
  - pkg/config: string forms parsed from YAML

# See Also

  - pkg/queue for the contract behind QueueStrategy
  - pkg/pool for how Collaborators are threaded through the engine
*/
package types
