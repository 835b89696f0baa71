package mps_test

import (
	"testing"
	"unsafe"

	"github.com/lumenrt/igc/internal/format"
	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/value"
)

func TestMaybeCollectOnlyRunsOnceNurseryIsDue(t *testing.T) {
	arena, err := mps.NewArena(mps.ClassVM)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	chain := mps.NewGenChain([2]mps.Generation{{Capacity: uint64(format.ConsSize), Mortality: 0.5}, {Capacity: 1 << 20, Mortality: 0.5}})
	pool, err := arena.NewPool("cons", mps.ClassAMS, chain, format.Cons, format.ConsSize)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	ap := mps.NewAllocPoint(pool)

	addr, err := ap.Reserve(format.ConsSize)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	cons := (*value.Cons)(unsafe.Pointer(addr))
	cons.Car = value.WithTag(1, value.TagInt)
	cons.Cdr = value.WithTag(2, value.TagInt)
	if err := ap.Commit(addr, format.ConsSize); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	triggered, _, err := arena.MaybeCollect(nil)
	if err != nil {
		t.Fatalf("MaybeCollect: %v", err)
	}
	if !triggered {
		t.Fatal("MaybeCollect did not trigger once nursery capacity was met")
	}
	// With nothing rooted, the block should have been reclaimed.
	if pool.Stats().Live != 0 {
		t.Fatalf("unrooted block survived collection: Live=%d", pool.Stats().Live)
	}
}

func TestParkExcludesConcurrentCollect(t *testing.T) {
	arena, err := mps.NewArena(mps.ClassVM)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	arena.Park()
	done := make(chan struct{})
	go func() {
		arena.Collect(false, nil)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Collect proceeded while arena was parked")
	default:
	}
	arena.Release()
	<-done
}

func TestStatsReportsPerPoolOccupancy(t *testing.T) {
	arena, err := mps.NewArena(mps.ClassVM)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	chain := mps.NewGenChain(mps.DefaultGenerations())
	pool, err := arena.NewPool("cons", mps.ClassAMS, chain, format.Cons, format.ConsSize)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	ap := mps.NewAllocPoint(pool)
	addr, err := ap.Reserve(format.ConsSize)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := ap.Commit(addr, format.ConsSize); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	stats := arena.Stats()
	got, ok := stats.Pools["cons"]
	if !ok {
		t.Fatal("Stats missing cons pool")
	}
	if got.Live != 1 {
		t.Fatalf("Live: got %d, want 1", got.Live)
	}
}
