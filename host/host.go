// Package host names the collaborators the collector reaches out to but
// does not specify: the host's legacy mark-sweep heap for non-cons/symbol
// values, its face cache, and its glyph matrix. These are small interfaces on purpose — this module must never
// need to know the host's real value taxonomy to compile.
package host

import "github.com/lumenrt/igc/value"

// MarkObject is the legacy mark-sweep phase's entry point for a single
// reference. The legacy-mark bridge (internal/legacy) calls this for
// every reference it finds whose tag names a legacy-managed kind.
type MarkObject func(ref value.Ref)

// FaceTable exposes a host's face cache for root scanning: Count is the
// number of face slots, and References returns the tagged words a given
// face holds (empty for an unused slot).
type FaceTable interface {
	Count() int
	References(id int) []uintptr
}

// GlyphRow is one row of a host's glyph matrix: the addresses of the
// object field of every glyph in that row.
type GlyphRow struct {
	ObjectAddrs []uintptr
}

// GlyphMatrix exposes a host's glyph row matrix for root scanning.
type GlyphMatrix interface {
	Rows() []GlyphRow
}

// StaticVec exposes a host's table of statically allocated reference
// slots for root scanning: Length is the table's fixed size, and Slot(i)
// returns the address of the i'th slot, or 0 for an unused entry.
type StaticVec interface {
	Length() int
	Slot(i int) uintptr
}

// Finalizer is a user-supplied callable a host attaches to a heap object.
// The finalization pump (igc.HandleMessages) invokes it at most once,
// after clearing the object's finalizer slot, never synchronously from
// inside a collection.
type Finalizer func()
