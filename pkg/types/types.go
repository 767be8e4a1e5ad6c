package types

import (
	"fmt"
	"time"
)

// Priority is a totally ordered tag on a job. Higher values are more
// urgent. The engine is generic over any set of Priority values; the
// three defaults below cover the common deployment.
type Priority int32

const (
	Background Priority = 10
	Batch      Priority = 50
	RealTime   Priority = 90
)

// String returns the canonical name for the built-in priorities and a
// numeric form for custom ones.
func (p Priority) String() string {
	switch p {
	case Background:
		return "background"
	case Batch:
		return "batch"
	case RealTime:
		return "realtime"
	default:
		return fmt.Sprintf("priority(%d)", int32(p))
	}
}

// ParsePriority maps a configuration string to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "background":
		return Background, nil
	case "batch":
		return Batch, nil
	case "realtime":
		return RealTime, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

// QueueStrategy selects the queue implementation backing a pool.
type QueueStrategy string

const (
	StrategyMutex    QueueStrategy = "mutex"
	StrategyLockFree QueueStrategy = "lockfree"
	StrategyAdaptive QueueStrategy = "adaptive"
)

// QueueStats is a point-in-time snapshot of queue occupancy and, for the
// lock-free variant, of segment reclamation progress.
type QueueStats struct {
	PendingPerPriority map[Priority]int
	RetiredNodes       uint64
	ReclaimedNodes     uint64
}

// Pending sums pending jobs across all priorities.
func (s QueueStats) Pending() int {
	total := 0
	for _, n := range s.PendingPerPriority {
		total += n
	}
	return total
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall-clock implementation used outside tests.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Compressor shrinks job payloads before they hit the spill directory.
// BlockSize is carried by the implementation's config, not per call.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Encryptor protects spilled payloads at rest. Implementations hold
// their key material; callers never see it.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// ScriptHost runs an embedded script and returns its textual result.
// The engine treats script execution as an opaque handler hook.
type ScriptHost interface {
	Run(script string) (string, error)
}

// Collaborators bundles the injected services the engine consumes.
// Every field is optional except Clock; zero values disable the
// corresponding feature.
type Collaborators struct {
	Clock      Clock
	Compressor Compressor
	Encryptor  Encryptor
	Scripts    ScriptHost
	ScratchDir string
}

// WithDefaults fills unset collaborators with safe defaults.
func (c Collaborators) WithDefaults() Collaborators {
	if c.Clock == nil {
		c.Clock = RealClock{}
	}
	return c
}
