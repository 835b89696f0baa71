package mps

import "testing"

func noopFormat() Format {
	return Format{
		Scan:        func(ss *ScanState, base, limit uintptr) error { return nil },
		Skip:        func(addr uintptr) uintptr { return addr },
		Forward:     func(old, new uintptr) {},
		IsForwarded: func(addr uintptr) (uintptr, bool) { return 0, false },
		Pad:         func(addr uintptr, n uintptr) {},
	}
}

func newTestPool(t *testing.T, class PoolClass, elemSize uintptr) *Pool {
	t.Helper()
	chain := NewGenChain([2]Generation{{Capacity: 64}, {Capacity: 64}})
	p, err := NewPool("test", class, chain, noopFormat(), elemSize)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	return p
}

func TestReserveCommitMarksBlockLive(t *testing.T) {
	p := newTestPool(t, ClassAMS, 16)
	addr, err := p.reserve()
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if p.isLive(addr) {
		t.Fatal("reserved-but-uncommitted block reported live")
	}
	p.commit(addr)
	if !p.isLive(addr) {
		t.Fatal("committed block not live")
	}
	if got := p.Stats().Live; got != 1 {
		t.Fatalf("Stats().Live: got %d, want 1", got)
	}
}

func TestReserveReusesFreedBlockFromFreeList(t *testing.T) {
	p := newTestPool(t, ClassAMS, 16)
	a, err := p.reserve()
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	p.commit(a)
	p.sweep(map[uintptr]bool{}, nil) // nothing marked, a is reclaimed

	b, err := p.reserve()
	if err != nil {
		t.Fatalf("reserve after sweep: %v", err)
	}
	if b != a {
		t.Fatalf("reserve did not reuse freed block: got %#x, want %#x", b, a)
	}
}

func TestSweepPreservesMarkedBlocks(t *testing.T) {
	p := newTestPool(t, ClassAMS, 16)
	live, err := p.reserve()
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	p.commit(live)
	dead, err := p.reserve()
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	p.commit(dead)

	freed, corrupted := p.sweep(map[uintptr]bool{live: true}, nil)
	if freed != 16 {
		t.Fatalf("freed bytes: got %d, want 16", freed)
	}
	if corrupted != 0 {
		t.Fatalf("corrupted: got %d, want 0", corrupted)
	}
	if !p.isLive(live) {
		t.Fatal("marked block was swept")
	}
	if p.isLive(dead) {
		t.Fatal("unmarked block survived sweep")
	}
}

func TestSweepCallsOnFreedForReclaimedBlocks(t *testing.T) {
	p := newTestPool(t, ClassAMS, 16)
	addr, err := p.reserve()
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	p.commit(addr)

	var got uintptr
	calls := 0
	p.sweep(map[uintptr]bool{}, func(a uintptr) {
		got = a
		calls++
	})
	if calls != 1 {
		t.Fatalf("onFreed calls: got %d, want 1", calls)
	}
	if got != addr {
		t.Fatalf("onFreed address: got %#x, want %#x", got, addr)
	}
}

func TestDebugPoolDetectsFenceCorruption(t *testing.T) {
	p := newTestPool(t, ClassAMSDebug, 16)
	addr, err := p.reserve()
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	p.commit(addr)
	if !p.fencesIntact(addr) {
		t.Fatal("fresh commit reports damaged fences")
	}

	// Overrun past the block's usable bytes into the trailing fencepost.
	p.writeWord(addr+p.elemSize, 0xBAD)

	_, corrupted := p.sweep(map[uintptr]bool{}, nil)
	if corrupted != 1 {
		t.Fatalf("corrupted: got %d, want 1", corrupted)
	}
}

func TestDebugPoolPoisonsFreedBlocks(t *testing.T) {
	p := newTestPool(t, ClassAMSDebug, 16)
	addr, err := p.reserve()
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	p.commit(addr)
	p.sweep(map[uintptr]bool{}, nil)

	for _, b := range p.blockBytes(addr) {
		if b != poisonByte {
			t.Fatalf("freed block not fully poisoned: got byte %#x", b)
		}
	}
}

func TestReserveReportsExhaustionOnceSlabIsFull(t *testing.T) {
	p := newTestPool(t, ClassAMS, 64) // capacity 64+64=128, stride 64: two blocks fit
	if _, err := p.reserve(); err != nil {
		t.Fatalf("reserve 1: %v", err)
	}
	if _, err := p.reserve(); err != nil {
		t.Fatalf("reserve 2: %v", err)
	}
	if _, err := p.reserve(); err == nil {
		t.Fatal("reserve past capacity succeeded")
	}
}
