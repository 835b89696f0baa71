package value

import "unsafe"

// Tag occupies the low bits of every Ref. Integer tags designate
// immediates; all other tags designate a heap-resident object.
type Tag uintptr

const (
	TagInt Tag = iota
	TagCons
	TagSymbol
	TagString
	TagVector
	TagFloat
	TagMisc // catch-all for host value kinds the collector does not manage directly
)

const (
	tagBits = 3
	TagMask = Tag(1)<<tagBits - 1
)

// Ref is a tagged machine word: the host's boxed pointer representation.
// For every tag except TagSymbol the untagged bits are an absolute
// address; for TagSymbol they are an offset into the symbol pool's slab
// (see SymbolArrayBase).
type Ref uintptr

// WithTag packs an untagged payload and a tag into one Ref. The caller is
// responsible for ensuring payload has no set bits below tagBits.
func WithTag(payload uintptr, t Tag) Ref {
	return Ref(payload | uintptr(t))
}

// TagOf extracts the tag carried by r.
func (r Ref) TagOf() Tag {
	return Tag(uintptr(r) & uintptr(TagMask))
}

// Untagged strips the tag bits, returning the raw payload. For TagSymbol
// this is an offset, not an address; see SymbolAddress.
func (r Ref) Untagged() uintptr {
	return uintptr(r) &^ uintptr(TagMask)
}

// IsImmediate reports whether r designates a value with no heap referent.
func (r Ref) IsImmediate() bool {
	return r.TagOf() == TagInt
}

var symbolArrayBase uintptr

// SetSymbolArrayBase records the base address symbol offsets are relative
// to. It is called exactly once, when the symbol pool's backing slab is
// created, and is immutable for the remainder of the process's lifetime
// (spec invariant: symbol_array_base never changes after init).
func SetSymbolArrayBase(base uintptr) {
	symbolArrayBase = base
}

// SymbolArrayBase returns the base address installed by SetSymbolArrayBase.
func SymbolArrayBase() uintptr {
	return symbolArrayBase
}

// SymbolAddress resolves a TagSymbol reference to an absolute address.
func SymbolAddress(r Ref) uintptr {
	return symbolArrayBase + r.Untagged()
}

// NewSymbolRef builds a TagSymbol reference from an absolute address,
// converting it to an offset from SymbolArrayBase.
func NewSymbolRef(addr uintptr) Ref {
	return WithTag(addr-symbolArrayBase, TagSymbol)
}

// Addr resolves any non-immediate reference to the absolute address of its
// referent, handling the symbol-as-offset special case.
func (r Ref) Addr() uintptr {
	if r.TagOf() == TagSymbol {
		return SymbolAddress(r)
	}
	return r.Untagged()
}

// Slot is the address of a word holding a Ref, used by fix and by the
// scanners in internal/rootreg and internal/format.
type Slot = *Ref

// AsUintptr reinterprets a pointer to a tagged word as a Slot, for
// scanners that walk raw memory regions whose layout only the host knows.
func AsUintptr(p unsafe.Pointer) Slot {
	return (*Ref)(p)
}
