package igc

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/lumenrt/igc/internal/format"
	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/internal/rootreg"
	"github.com/lumenrt/igc/internal/threadreg"
	"github.com/lumenrt/igc/value"
)

var errManageConsDisabled = errors.New("igc: cons/symbol pools are disabled by Config.ManageCons")

// MakeCons reserves a cons block from th's cons allocation point, writes
// car and cdr, and commits — retrying the whole reserve/write/commit
// cycle if commit fails. It must not be called from more than one
// goroutine against the same th concurrently: allocation points are
// never shared across threads.
func (c *Collector) MakeCons(th *threadreg.Handle, car, cdr value.Ref) (value.Ref, error) {
	if !c.cfg.ManageCons {
		return 0, errManageConsDisabled
	}
	addr, err := allocRetry(th.ConsAP, format.ConsSize, func(addr uintptr) {
		cons := (*value.Cons)(unsafe.Pointer(addr))
		cons.Car = car
		cons.Cdr = cdr
	})
	if err != nil {
		return 0, fmt.Errorf("igc: make cons: %w", err)
	}
	c.maybeCollect()
	return value.WithTag(addr, value.TagCons), nil
}

// AllocSymbol reserves a symbol block and commits it with its fields left
// uninitialized for the caller to fill in. The returned reference's
// untagged bits are an offset from value.SymbolArrayBase, not an
// absolute address.
func (c *Collector) AllocSymbol(th *threadreg.Handle) (value.Ref, error) {
	if !c.cfg.ManageCons {
		return 0, errManageConsDisabled
	}
	addr, err := allocRetry(th.SymbolAP, format.SymbolSize, nil)
	if err != nil {
		return 0, fmt.Errorf("igc: alloc symbol: %w", err)
	}
	c.maybeCollect()
	return value.NewSymbolRef(addr), nil
}

// allocRetry runs the reserve/write/commit cycle, redoing it from scratch
// whenever Commit reports mps.ErrCommitFailed — the collector traced the
// nursery out from under the reservation and the stale address must not
// be reused.
func allocRetry(ap *mps.AllocPoint, size uintptr, write func(addr uintptr)) (uintptr, error) {
	for {
		addr, err := ap.Reserve(size)
		if err != nil {
			return 0, err
		}
		if write != nil {
			write(addr)
		}
		if err := ap.Commit(addr, size); err != nil {
			if errors.Is(err, mps.ErrCommitFailed) {
				continue
			}
			return 0, err
		}
		return addr, nil
	}
}

// XallocAmbigRoot zero-fills a size-byte region and registers it as an
// ambiguous root, returning its base address. The
// backing storage is ordinary Go memory kept alive by ambigRoots until
// XfreeAmbigRoot releases it.
func (c *Collector) XallocAmbigRoot(size uintptr) (uintptr, error) {
	storage := make([]byte, size)
	base := uintptr(unsafe.Pointer(&storage[0]))

	h, err := c.roots.RegisterRoot(c.arena, base, base+size, nil, rootreg.ScanMemArea(base, base+size))
	if err != nil {
		return 0, fmt.Errorf("igc: xalloc ambig root: %w", err)
	}

	c.ambigMu.Lock()
	c.ambigRoots[base] = &ambigRoot{storage: storage, handle: h}
	c.ambigMu.Unlock()
	return base, nil
}

// XfreeAmbigRoot looks up the root registered at base by XallocAmbigRoot
// and removes it, releasing the backing storage to the Go garbage
// collector.
func (c *Collector) XfreeAmbigRoot(base uintptr) error {
	c.ambigMu.Lock()
	r, ok := c.ambigRoots[base]
	if ok {
		delete(c.ambigRoots, base)
	}
	c.ambigMu.Unlock()
	if !ok {
		return fmt.Errorf("igc: xfree ambig root: no root registered at %#x", base)
	}
	c.roots.RemoveRoot(r.handle)
	return nil
}
