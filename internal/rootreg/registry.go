package rootreg

import (
	"fmt"
	"sync"

	"github.com/lumenrt/igc/internal/mps"
)

// Registry is the doubly linked collection of root handles. It is not
// thread-safe on its own — mutations must be serialized either by the
// host's global lock or by the arena being parked. Registry's own mutex
// only protects its linked-list pointers from concurrent Registry method
// calls, it does not substitute for arena parking against a concurrent
// collection.
type Registry struct {
	mu    sync.Mutex
	first *Handle
	last  *Handle

	// Validate, if set, rejects a RegisterRoot call whose range the host
	// doesn't recognize as belonging to any region it manages (stack,
	// static data, heap). Left nil by default since recognizing those
	// regions is platform- and host-specific knowledge outside this
	// module's scope.
	Validate func(start, end uintptr) bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// RegisterRoot adds a new handle covering [start,end) at the head of the
// list. scan is invoked once per collection by arena while the handle is
// registered.
func (r *Registry) RegisterRoot(arena *mps.Arena, start, end uintptr, owner any, scan func(ss *mps.ScanState) error) (*Handle, error) {
	if start > end {
		return nil, fmt.Errorf("rootreg: invalid range [%#x,%#x)", start, end)
	}
	if r.Validate != nil && !r.Validate(start, end) {
		return nil, fmt.Errorf("rootreg: range [%#x,%#x) not recognized by host", start, end)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h := r.findOverlap(start, end); h != nil {
		return nil, fmt.Errorf("rootreg: range [%#x,%#x) overlaps existing root [%#x,%#x)", start, end, h.Start, h.End)
	}

	h := &Handle{Owner: owner, Start: start, End: end}
	h.mpsRoot = arena.NewRoot(scan)

	h.next = r.first
	if r.first != nil {
		r.first.prev = h
	}
	r.first = h
	if r.last == nil {
		r.last = h
	}
	return h, nil
}

// DeregisterRoot unlinks h and frees it, returning the underlying MPM root
// so the caller can destroy it. Callers that just want both steps done
// should use RemoveRoot instead.
func (r *Registry) DeregisterRoot(h *Handle) *mps.Root {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unlink(h)
	root := h.mpsRoot
	h.mpsRoot = nil
	return root
}

// RemoveRoot deregisters h and destroys its underlying MPM root.
func (r *Registry) RemoveRoot(h *Handle) {
	root := r.DeregisterRoot(h)
	if root != nil {
		root.Destroy()
	}
}

// ReplaceRoot atomically swaps old's underlying root for a new one covering
// [start,end), parking the arena for the whole span so no collection can
// observe a moment with zero or duplicate coverage of the region. Used by
// the grow-specpdl, face-cache-change, adjust-glyph-matrix, and
// grow-read-stack hooks. old is unlinked and its replacement takes old's
// place at the head of the list.
func (r *Registry) ReplaceRoot(arena *mps.Arena, old *Handle, start, end uintptr, owner any, scan func(ss *mps.ScanState) error) (*Handle, error) {
	if start > end {
		return nil, fmt.Errorf("rootreg: invalid range [%#x,%#x)", start, end)
	}

	arena.Park()
	defer arena.Release()

	r.mu.Lock()
	defer r.mu.Unlock()

	if old != nil {
		arena.RemoveRootParked(old.mpsRoot)
		r.unlink(old)
		old.mpsRoot = nil
	}
	if h := r.findOverlap(start, end); h != nil {
		return nil, fmt.Errorf("rootreg: range [%#x,%#x) overlaps existing root [%#x,%#x)", start, end, h.Start, h.End)
	}

	h := &Handle{Owner: owner, Start: start, End: end}
	h.mpsRoot = arena.NewRootParked(scan)

	h.next = r.first
	if r.first != nil {
		r.first.prev = h
	}
	r.first = h
	if r.last == nil {
		r.last = h
	}
	return h, nil
}

// FindRootWithStart returns the handle whose range begins at start, or
// nil.
func (r *Registry) FindRootWithStart(start uintptr) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h := r.first; h != nil; h = h.next {
		if h.Start == start {
			return h
		}
	}
	return nil
}

// RemoveAll drains the registry, destroying every handle's MPM root.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	h := r.first
	r.first, r.last = nil, nil
	r.mu.Unlock()

	for h != nil {
		next := h.next
		h.prev, h.next = nil, nil
		if h.mpsRoot != nil {
			h.mpsRoot.Destroy()
			h.mpsRoot = nil
		}
		h = next
	}
}

// findOverlap must be called with mu held.
func (r *Registry) findOverlap(start, end uintptr) *Handle {
	for h := r.first; h != nil; h = h.next {
		if start < h.End && h.Start < end {
			return h
		}
	}
	return nil
}

// unlink must be called with mu held.
func (r *Registry) unlink(h *Handle) {
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
