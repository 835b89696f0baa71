package rootreg_test

import (
	"testing"

	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/internal/rootreg"
)

func noopScan(ss *mps.ScanState) error { return nil }

func newArena(t *testing.T) *mps.Arena {
	t.Helper()
	arena, err := mps.NewArena(mps.ClassVM)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	return arena
}

func TestRegisterRootRejectsOverlap(t *testing.T) {
	arena := newArena(t)
	r := rootreg.New()

	if _, err := r.RegisterRoot(arena, 0x1000, 0x2000, nil, noopScan); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := r.RegisterRoot(arena, 0x1800, 0x2800, nil, noopScan); err == nil {
		t.Fatal("overlapping range accepted")
	}
	if _, err := r.RegisterRoot(arena, 0x2000, 0x3000, nil, noopScan); err != nil {
		t.Fatalf("adjacent (non-overlapping) range rejected: %v", err)
	}
}

func TestRegisterRootRejectsInvertedRange(t *testing.T) {
	arena := newArena(t)
	r := rootreg.New()
	if _, err := r.RegisterRoot(arena, 0x2000, 0x1000, nil, noopScan); err == nil {
		t.Fatal("start > end accepted")
	}
}

func TestFindRootWithStart(t *testing.T) {
	arena := newArena(t)
	r := rootreg.New()
	h, err := r.RegisterRoot(arena, 0x4000, 0x5000, "owner", noopScan)
	if err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	if got := r.FindRootWithStart(0x4000); got != h {
		t.Fatalf("FindRootWithStart: got %v, want %v", got, h)
	}
	if got := r.FindRootWithStart(0x9999); got != nil {
		t.Fatalf("FindRootWithStart for unknown start: got %v, want nil", got)
	}
}

func TestRemoveRootFreesRangeForReuse(t *testing.T) {
	arena := newArena(t)
	r := rootreg.New()
	h, err := r.RegisterRoot(arena, 0x1000, 0x2000, nil, noopScan)
	if err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}
	r.RemoveRoot(h)
	if _, err := r.RegisterRoot(arena, 0x1000, 0x2000, nil, noopScan); err != nil {
		t.Fatalf("re-registering freed range: %v", err)
	}
}

func TestRemoveAllDrainsRegistry(t *testing.T) {
	arena := newArena(t)
	r := rootreg.New()
	for i := 0; i < 4; i++ {
		start := uintptr(i * 0x1000)
		if _, err := r.RegisterRoot(arena, start, start+0x100, nil, noopScan); err != nil {
			t.Fatalf("RegisterRoot %d: %v", i, err)
		}
	}
	r.RemoveAll()
	if h := r.FindRootWithStart(0); h != nil {
		t.Fatal("handle survived RemoveAll")
	}
}

func TestValidateHookRejectsUnrecognizedRange(t *testing.T) {
	arena := newArena(t)
	r := rootreg.New()
	r.Validate = func(start, end uintptr) bool { return start >= 0x10000 }

	if _, err := r.RegisterRoot(arena, 0x100, 0x200, nil, noopScan); err == nil {
		t.Fatal("range rejected by Validate was accepted")
	}
	if _, err := r.RegisterRoot(arena, 0x10000, 0x10100, nil, noopScan); err != nil {
		t.Fatalf("range accepted by Validate was rejected: %v", err)
	}
}

func TestReplaceRootSwapsRangeAtomically(t *testing.T) {
	arena := newArena(t)
	r := rootreg.New()
	h, err := r.RegisterRoot(arena, 0x1000, 0x2000, "owner", noopScan)
	if err != nil {
		t.Fatalf("RegisterRoot: %v", err)
	}

	nh, err := r.ReplaceRoot(arena, h, 0x5000, 0x7000, "owner", noopScan)
	if err != nil {
		t.Fatalf("ReplaceRoot: %v", err)
	}
	if got := r.FindRootWithStart(0x1000); got != nil {
		t.Fatal("old range still registered after ReplaceRoot")
	}
	if got := r.FindRootWithStart(0x5000); got != nh {
		t.Fatalf("FindRootWithStart for new range: got %v, want %v", got, nh)
	}
}
