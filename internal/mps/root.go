package mps

// Root is a registered scan callback covering some region the collector
// must trace. internal/rootreg wraps this with doubly linked handle
// bookkeeping and an overlap invariant; this package knows nothing about
// address ranges or overlap, only that the callback must be invoked once
// per collection.
type Root struct {
	arena *Arena
	scan  func(ss *ScanState) error
}

// Destroy unregisters the root; it will not be scanned by any later
// collection.
func (r *Root) Destroy() {
	r.arena.removeRoot(r)
}

// Thread is a registered mutator thread. The real MPM associates register
// and stack-scanning state with this handle; our simulation only needs it
// to exist as the thing internal/threadreg attaches allocation points and
// a stack root to, and to give Destroy somewhere to unregister from.
type Thread struct {
	arena *Arena
}

// NewThread registers the calling thread with the arena.
func (a *Arena) NewThread() *Thread {
	return &Thread{arena: a}
}

// Destroy deregisters the thread. It does not, by itself, remove any
// roots or allocation points associated with it — internal/threadreg is
// responsible for tearing those down first.
func (t *Thread) Destroy() {
	t.arena = nil
}
