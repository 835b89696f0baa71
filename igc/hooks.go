package igc

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/lumenrt/igc/host"
	"github.com/lumenrt/igc/internal/rootreg"
	"github.com/lumenrt/igc/internal/threadreg"
)

// OnMemInsert adds an ambiguous root covering [start,end) — a host-owned
// memory block the collector must now treat as possibly holding
// references.
func (c *Collector) OnMemInsert(start, end uintptr) (*rootreg.Handle, error) {
	h, err := c.roots.RegisterRoot(c.arena, start, end, nil, rootreg.ScanMemArea(start, end))
	if err != nil {
		return nil, fmt.Errorf("igc: mem insert: %w", err)
	}
	return h, nil
}

// OnMemDelete removes a root previously installed by OnMemInsert.
func (c *Collector) OnMemDelete(h *rootreg.Handle) {
	c.roots.RemoveRoot(h)
}

// OnStaticVecAdd installs vec, a host's table of statically allocated
// reference slots, as an ambiguous root covering [start,end). Init calls
// this itself when Config.StaticVec is set; a host that builds its
// static-vector table after Init must call it directly, before any
// collection can run.
func (c *Collector) OnStaticVecAdd(start, end uintptr, vec host.StaticVec) (*rootreg.Handle, error) {
	scan := rootreg.ScanStaticVec(vec.Length(), vec.Slot)
	h, err := c.roots.RegisterRoot(c.arena, start, end, vec, scan)
	if err != nil {
		return nil, fmt.Errorf("igc: static vec add: %w", err)
	}
	return h, nil
}

// OnStaticVecRemove removes a root previously installed by OnStaticVecAdd.
func (c *Collector) OnStaticVecRemove(h *rootreg.Handle) {
	c.roots.RemoveRoot(h)
}

// OnAllocMainThreadSpecpdl installs th's value-binding stack root once the
// host has allocated it, covering a thread that registered before its
// specpdl existed.
func (c *Collector) OnAllocMainThreadSpecpdl(th *threadreg.Handle, start, end uintptr) error {
	if th.SpecpdlRoot != nil {
		return fmt.Errorf("igc: specpdl root already installed for this thread")
	}
	h, err := c.roots.RegisterRoot(c.arena, start, end, th, rootreg.ScanMemArea(start, end))
	if err != nil {
		return fmt.Errorf("igc: alloc main thread specpdl: %w", err)
	}
	th.SpecpdlRoot = h
	return nil
}

// OnGrowSpecpdl replaces th's specpdl root with one covering the
// reallocated [newStart,newEnd) range, atomically: park the arena,
// remove the old specpdl root, install the new one, unpark.
func (c *Collector) OnGrowSpecpdl(th *threadreg.Handle, newStart, newEnd uintptr) error {
	h, err := c.roots.ReplaceRoot(c.arena, th.SpecpdlRoot, newStart, newEnd, th, rootreg.ScanMemArea(newStart, newEnd))
	if err != nil {
		return fmt.Errorf("igc: grow specpdl: %w", err)
	}
	th.SpecpdlRoot = h
	return nil
}

// OnSpecbindingUnused zero-fills a binding record so no stale reference
// inside it survives to be scanned as live.
func (c *Collector) OnSpecbindingUnused(addr, size uintptr) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	for i := range b {
		b[i] = 0
	}
}

// OnPdumpLoaded adds an ambiguous root covering a pre-serialized image's
// value section.
func (c *Collector) OnPdumpLoaded(start, end uintptr) (*rootreg.Handle, error) {
	h, err := c.roots.RegisterRoot(c.arena, start, end, nil, rootreg.ScanMemArea(start, end))
	if err != nil {
		return nil, fmt.Errorf("igc: pdump loaded: %w", err)
	}
	return h, nil
}

// OnMakeFaceCache installs a root scanning table's face records.
func (c *Collector) OnMakeFaceCache(start, end uintptr, table host.FaceTable) (*rootreg.Handle, error) {
	scan := rootreg.ScanFacesByID(table.Count(), table.References)
	h, err := c.roots.RegisterRoot(c.arena, start, end, table, scan)
	if err != nil {
		return nil, fmt.Errorf("igc: make face cache: %w", err)
	}
	return h, nil
}

// OnFreeFaceCache removes a root installed by OnMakeFaceCache.
func (c *Collector) OnFreeFaceCache(h *rootreg.Handle) {
	c.roots.RemoveRoot(h)
}

// OnFaceCacheChange replaces a face-cache root after the cache resized,
// parking for the swap since the old and new ranges may overlap.
func (c *Collector) OnFaceCacheChange(h *rootreg.Handle, start, end uintptr, table host.FaceTable) (*rootreg.Handle, error) {
	scan := rootreg.ScanFacesByID(table.Count(), table.References)
	nh, err := c.roots.ReplaceRoot(c.arena, h, start, end, table, scan)
	if err != nil {
		return nil, fmt.Errorf("igc: face cache change: %w", err)
	}
	return nh, nil
}

// OnAdjustGlyphMatrix replaces a glyph-matrix root after its rows buffer
// was reallocated.
func (c *Collector) OnAdjustGlyphMatrix(h *rootreg.Handle, start, end uintptr, matrix host.GlyphMatrix) (*rootreg.Handle, error) {
	scan := rootreg.ScanGlyphRows(func() []rootreg.GlyphRow { return convertRows(matrix.Rows()) })
	nh, err := c.roots.ReplaceRoot(c.arena, h, start, end, matrix, scan)
	if err != nil {
		return nil, fmt.Errorf("igc: adjust glyph matrix: %w", err)
	}
	return nh, nil
}

// OnFreeGlyphMatrix removes a glyph-matrix root, if one is installed.
func (c *Collector) OnFreeGlyphMatrix(h *rootreg.Handle) {
	if h == nil {
		return
	}
	c.roots.RemoveRoot(h)
}

func convertRows(rows []host.GlyphRow) []rootreg.GlyphRow {
	out := make([]rootreg.GlyphRow, len(rows))
	for i, r := range rows {
		out[i] = rootreg.GlyphRow{ObjectAddrs: r.ObjectAddrs}
	}
	return out
}

// OnGrowReadStack replaces the reader stack's root after a reallocation.
func (c *Collector) OnGrowReadStack(oldHandle *rootreg.Handle, start, end uintptr) (*rootreg.Handle, error) {
	h, err := c.roots.ReplaceRoot(c.arena, oldHandle, start, end, nil, rootreg.ScanMemArea(start, end))
	if err != nil {
		return nil, fmt.Errorf("igc: grow read stack: %w", err)
	}
	return h, nil
}

// OnIdle asks the arena to perform up to Config.IdleBudget worth of
// incremental work.
func (c *Collector) OnIdle() {
	if atomic.LoadInt32(&c.inhibited) > 0 {
		return
	}
	stats, err := c.arena.Step(c.cfg.IdleBudget, c.onFreed)
	if err != nil {
		c.fatal("idle step", err)
	}
	if stats.FreedBytes > 0 || stats.Major {
		c.log.WithField("freed_bytes", stats.FreedBytes).Debug("igc: idle collection")
	}
}

// Token is the restore handle InhibitGarbageCollection returns. Release
// is idempotent and safe to call from a deferred statement.
type Token struct {
	once sync.Once
	c    *Collector
}

// Release ends the inhibited span, letting collections resume.
func (t *Token) Release() {
	t.once.Do(func() {
		atomic.AddInt32(&t.c.inhibited, -1)
		t.c.arena.Release()
	})
}

// InhibitGarbageCollection parks the arena and suppresses any
// allocation-triggered collection until the returned token is released.
// Pool sizes are strictly monotonic for the span's duration since no
// collection can reclaim anything while inhibited.
func (c *Collector) InhibitGarbageCollection() *Token {
	atomic.AddInt32(&c.inhibited, 1)
	c.arena.Park()
	return &Token{c: c}
}

// HandleMessages drains the finalization message queue, invoking each
// finalizer exactly once.
func (c *Collector) HandleMessages() {
	for _, msg := range c.arena.Messages().Dequeue() {
		if msg.Finalize != nil {
			msg.Finalize()
		}
	}
}
