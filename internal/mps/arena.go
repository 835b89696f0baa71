package mps

import (
	"sync"
	"time"
)

// ArenaStats aggregates every pool's occupancy.
type ArenaStats struct {
	Pools      map[string]PoolStats
	Collisions int // not populated by Stats; per-cycle counts are in CollectStats.Corrupted
}

// CollectStats reports what one collection cycle did.
type CollectStats struct {
	FreedBytes uintptr
	Major      bool
	Corrupted  int
}

// Arena is the process-wide MPM handle: it owns every pool, root, and
// thread, and is the single point of mutual exclusion between a
// collection cycle and any hook that mutates the root or thread registry.
type Arena struct {
	class ArenaClass

	mu sync.Mutex // held for the duration of a Collect, and from Park until Release

	pools []*Pool
	roots []*Root

	messages *MessageQueue
}

// NewArena creates a VM-backed arena. Real MPM/arena creation failure is
// fatal at init; here that just means NewArena's error return should be
// treated as fatal by the caller (igc.Init), not recovered from.
func NewArena(class ArenaClass) (*Arena, error) {
	return &Arena{
		class:    class,
		messages: newMessageQueue(),
	}, nil
}

// Free destroys every pool and releases the arena. Called once at host
// teardown.
func (a *Arena) Free() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.pools {
		p.Destroy()
	}
	a.pools = nil
	a.roots = nil
}

// NewPool creates and registers a pool bound to this arena.
func (a *Arena) NewPool(name string, class PoolClass, chain *GenChain, format Format, elemSize uintptr) (*Pool, error) {
	p, err := NewPool(name, class, chain, format, elemSize)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.pools = append(a.pools, p)
	a.mu.Unlock()
	return p, nil
}

func (a *Arena) poolContaining(addr uintptr) (*Pool, bool) {
	for _, p := range a.pools {
		if p.contains(addr) {
			return p, true
		}
	}
	return nil, false
}

// NewRoot registers scan as a root and returns a handle the caller
// (internal/rootreg) owns. fn is invoked with a fresh ScanState during
// every collection until Destroy is called.
func (a *Arena) NewRoot(fn func(ss *ScanState) error) *Root {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addRootLocked(fn)
}

// NewRootParked is NewRoot for a caller that already holds Park, letting a
// hook remove one root and add its replacement as a single atomic span.
func (a *Arena) NewRootParked(fn func(ss *ScanState) error) *Root {
	return a.addRootLocked(fn)
}

func (a *Arena) addRootLocked(fn func(ss *ScanState) error) *Root {
	r := &Root{arena: a, scan: fn}
	a.roots = append(a.roots, r)
	return r
}

func (a *Arena) removeRoot(r *Root) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeRootLocked(r)
}

// RemoveRootParked is the Park-already-held counterpart to removeRoot, for
// the same atomic replace span NewRootParked serves.
func (a *Arena) RemoveRootParked(r *Root) {
	a.removeRootLocked(r)
}

func (a *Arena) removeRootLocked(r *Root) {
	for i, rr := range a.roots {
		if rr == r {
			a.roots = append(a.roots[:i], a.roots[i+1:]...)
			return
		}
	}
}

// Park acquires exclusive access to the arena, the same access a
// collection cycle needs. Hooks that mutate the root or thread registry
// while a collection could be scanning must call Park before mutating and
// Release after.
func (a *Arena) Park() { a.mu.Lock() }

// Release ends a Park. Safe to call only after a matching Park.
func (a *Arena) Release() { a.mu.Unlock() }

// OnFreed is called for every block a collection reclaims, with the
// block's address, before it rejoins its pool's free list. igc.Collector
// uses this to turn a reclaimed, finalizer-bearing block into a
// finalization message instead of silently dropping it.
type OnFreed func(addr uintptr)

// Collect runs one synchronous mark-sweep cycle over every registered
// root and pool. The real MPM traces incrementally and concurrently with
// the mutator; since that algorithm is explicitly out of
// this module's scope, this simulation performs the same
// mark-then-sweep transitively-closed walk a real cycle would, just
// without interleaving it with mutator progress.
func (a *Arena) Collect(major bool, onFreed OnFreed) (CollectStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.collectLocked(major, onFreed)
}

func (a *Arena) collectLocked(major bool, onFreed OnFreed) (CollectStats, error) {
	ss := &ScanState{arena: a, marked: make(map[uintptr]bool)}
	for _, r := range a.roots {
		if err := r.scan(ss); err != nil {
			return CollectStats{}, err
		}
	}
	for len(ss.queue) > 0 {
		item := ss.queue[0]
		ss.queue = ss.queue[1:]
		limit := item.addr + item.pool.elemSize
		if err := item.pool.format.Scan(ss, item.addr, limit); err != nil {
			return CollectStats{}, err
		}
	}
	var stats CollectStats
	stats.Major = major
	var survived uint64
	for _, p := range a.pools {
		freed, corrupted := p.sweep(ss.marked, onFreed)
		stats.FreedBytes += freed
		stats.Corrupted += corrupted
		survived += uint64(p.Stats().Committed)
	}
	for _, p := range a.pools {
		p.chain.Collected(major, survived)
	}
	return stats, nil
}

// MaybeCollect consults every distinct generation chain reachable from the
// arena's pools and runs a collection if any is due. Called after every
// allocation, the same "collect once allocation has passed the pacer's
// goal" discipline a tracing collector's allocation slow path follows.
func (a *Arena) MaybeCollect(onFreed OnFreed) (bool, CollectStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := map[*GenChain]bool{}
	trigger, major := false, false
	for _, p := range a.pools {
		if seen[p.chain] {
			continue
		}
		seen[p.chain] = true
		t, m := p.chain.Due()
		trigger = trigger || t
		major = major || m
	}
	if !trigger {
		return false, CollectStats{}, nil
	}
	stats, err := a.collectLocked(major, onFreed)
	return true, stats, err
}

// Step performs up to budget's worth of incremental collection work. This
// simulation has no partial-cycle representation, so it runs one full
// cycle if budget is positive and a generation chain is due (the same
// test MaybeCollect applies), and otherwise does nothing.
// Idle-time collection is best-effort, never a guarantee.
func (a *Arena) Step(budget time.Duration, onFreed OnFreed) (CollectStats, error) {
	if budget <= 0 {
		return CollectStats{}, nil
	}
	done, stats, err := a.MaybeCollect(onFreed)
	if !done {
		return CollectStats{}, err
	}
	return stats, err
}

// Stats aggregates every pool's occupancy.
func (a *Arena) Stats() ArenaStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := ArenaStats{Pools: make(map[string]PoolStats, len(a.pools))}
	for _, p := range a.pools {
		out.Pools[p.Name()] = p.Stats()
	}
	return out
}

// Messages returns the arena's finalization message queue.
func (a *Arena) Messages() *MessageQueue { return a.messages }
