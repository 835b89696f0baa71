package mps

import (
	"errors"
	"testing"
)

func TestAllocPointReserveCommitRoundTrip(t *testing.T) {
	p := newTestPool(t, ClassAMS, 16)
	ap := NewAllocPoint(p)

	addr, err := ap.Reserve(16)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := ap.Commit(addr, 16); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !p.isLive(addr) {
		t.Fatal("committed block not live")
	}
}

func TestAllocPointRejectsWrongSizeReserve(t *testing.T) {
	p := newTestPool(t, ClassAMS, 16)
	ap := NewAllocPoint(p)
	if _, err := ap.Reserve(32); err == nil {
		t.Fatal("Reserve with wrong size succeeded")
	}
}

func TestAllocPointCommitFailsOnSizeMismatch(t *testing.T) {
	p := newTestPool(t, ClassAMS, 16)
	ap := NewAllocPoint(p)
	addr, err := ap.Reserve(16)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := ap.Commit(addr, 32); !errors.Is(err, ErrCommitFailed) {
		t.Fatalf("Commit with mismatched size: got %v, want ErrCommitFailed", err)
	}
}

func TestAllocPointDestroyDetachesPool(t *testing.T) {
	p := newTestPool(t, ClassAMS, 16)
	ap := NewAllocPoint(p)
	ap.Destroy()
	if ap.pool != nil {
		t.Fatal("Destroy did not detach pool")
	}
}
