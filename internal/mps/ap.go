package mps

// AllocPoint is a thread-local fast-path buffer into one pool. It is
// never shared across threads — using one from another thread is
// undefined behavior — so it carries no lock of its own; all
// serialization happens inside the pool it is bound to.
type AllocPoint struct {
	pool *Pool
}

// NewAllocPoint binds a fresh allocation point to pool.
func NewAllocPoint(pool *Pool) *AllocPoint {
	return &AllocPoint{pool: pool}
}

// Reserve asks the bound pool for the next block's address. The returned
// address is not yet visible to a collection; the caller must either
// Commit it or abandon it without touching it further.
func (ap *AllocPoint) Reserve(size uintptr) (uintptr, error) {
	if size != ap.pool.elemSize {
		return 0, errAllocExhausted
	}
	return ap.pool.reserve()
}

// Commit finalizes a reservation, making addr visible to the next
// collection with its contents left as the caller wrote them. Spec
// section 3 allows commit to fail, in which case the caller must redo the
// whole reserve/write/commit cycle; this simulation's commit fails only
// when size differs from the pool's block size, but returns an error to
// keep call sites honoring the retry protocol.
func (ap *AllocPoint) Commit(addr, size uintptr) error {
	if size != ap.pool.elemSize {
		return ErrCommitFailed
	}
	ap.pool.commit(addr)
	return nil
}

// Destroy detaches the allocation point from its pool. Any outstanding
// uncommitted reservation is abandoned.
func (ap *AllocPoint) Destroy() {
	ap.pool = nil
}
