package threadreg

import (
	"sync"

	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/internal/rootreg"
)

// Handle is one registered mutator thread.
type Handle struct {
	mpsThread     *mps.Thread
	ColdStackBase uintptr
	StackRoot     *rootreg.Handle
	SpecpdlRoot   *rootreg.Handle // nil until on_alloc_main_thread_specpdl runs
	ConsAP        *mps.AllocPoint
	SymbolAP      *mps.AllocPoint

	prev *Handle
	next *Handle
}

// Registry is the doubly linked thread-handle list, the same intrusive
// list shape as internal/rootreg.Registry.
type Registry struct {
	mu    sync.Mutex
	first *Handle
	last  *Handle
}

func New() *Registry {
	return &Registry{}
}

// Add links a new handle at the head of the list. Allocation points are created here, bound to
// consPool and symbolPool; stack and specpdl roots are the caller's
// responsibility (igc.ThreadAdd), since only the caller knows the host's
// stack-scanning conventions.
func (r *Registry) Add(thread *mps.Thread, coldStackBase uintptr, consPool, symbolPool *mps.Pool) *Handle {
	h := &Handle{
		mpsThread:     thread,
		ColdStackBase: coldStackBase,
		ConsAP:        mps.NewAllocPoint(consPool),
		SymbolAP:      mps.NewAllocPoint(symbolPool),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h.next = r.first
	if r.first != nil {
		r.first.prev = h
	}
	r.first = h
	if r.last == nil {
		r.last = h
	}
	return h
}

// Remove tears down h's allocation points first, then deregisters the
// thread with the MPM, then unlinks h.
func (r *Registry) Remove(h *Handle) {
	h.ConsAP.Destroy()
	h.SymbolAP.Destroy()
	h.mpsThread.Destroy()

	r.mu.Lock()
	defer r.mu.Unlock()
	if h.prev != nil {
		h.prev.next = h.next
	} else {
		r.first = h.next
	}
	if h.next != nil {
		h.next.prev = h.prev
	} else {
		r.last = h.prev
	}
	h.prev, h.next = nil, nil
}

// ForEach calls fn for every registered thread handle, in head-to-tail
// (most-recently-added first) order.
func (r *Registry) ForEach(fn func(*Handle)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h := r.first; h != nil; h = h.next {
		fn(h)
	}
}
