package job

import "sync"

// Requeuer accepts follow-up jobs produced inside work methods. The
// pool implements it.
type Requeuer interface {
	Push(j *Job) error
}

// Handle is a weak reference to a pool's requeue surface. The pool
// creates one handle for its lifetime, attaches it to every accepted
// job, and invalidates it on destruction. Pushing through an
// invalidated handle drops the job without error, which is the
// documented fate of work produced after the pool is gone.
type Handle struct {
	mu     sync.RWMutex
	target Requeuer
}

// NewHandle creates a handle bound to the given requeuer.
func NewHandle(r Requeuer) *Handle {
	return &Handle{target: r}
}

// Push forwards to the bound requeuer, or silently drops the job when
// the handle has been invalidated.
func (h *Handle) Push(j *Job) error {
	h.mu.RLock()
	target := h.target
	h.mu.RUnlock()
	if target == nil {
		return nil
	}
	return target.Push(j)
}

// Invalidate severs the handle. Idempotent.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	h.target = nil
	h.mu.Unlock()
}

// Valid reports whether the handle still resolves.
func (h *Handle) Valid() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.target != nil
}
