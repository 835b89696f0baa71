package igc

import (
	"github.com/lumenrt/igc/host"
	"github.com/lumenrt/igc/internal/legacy"
	"github.com/lumenrt/igc/value"
)

// RegisterFinalizer attaches fn to ref: when a collection determines
// ref's referent is unreachable, fn is queued as a finalization message
// and run the next time HandleMessages is called, exactly once.
// Registering a new finalizer for a ref that already has one replaces
// it. A nil fn disables finalization for ref.
func (c *Collector) RegisterFinalizer(ref value.Ref, fn func()) {
	c.finMu.Lock()
	defer c.finMu.Unlock()
	if fn == nil {
		delete(c.finalizers, ref)
		return
	}
	c.finalizers[ref] = finalizerEntry{addr: ref.Addr(), fn: fn}
}

// MarkLegacyReferents runs the legacy-mark bridge over
// both managed pools, invoking mark for every reference whose tag names a
// kind the legacy heap still owns.
func (c *Collector) MarkLegacyReferents(mark host.MarkObject) {
	legacy.MarkOldObjectsReferencedFromPools(c.consPool, c.symbolPool, mark)
}
