package value

// ScanState is the narrow slice of the MPM's scan-state object the fix
// primitive needs: "is this address interesting" (Fix1) and "fix it,
// returning the possibly-updated address" (Fix2). internal/mps.ScanState
// satisfies this interface; value never imports internal/mps, so the
// fix algorithm does not depend on which MPM backs it.
type ScanState interface {
	Fix1(addr uintptr) bool
	Fix2(addr uintptr) (uintptr, error)
}

// Fix implements the tag/fix primitive: read the tagged word at slot,
// leave immediates untouched, and for every heap-referencing tag
// ask the scan state whether the referent moved, rewriting slot in place
// with the (possibly new) payload and the original tag bits preserved.
//
// The symbol-as-offset case is handled by converting to an absolute
// address before FIX1/FIX2 and back to an offset afterward, since the MPM
// only ever reasons about absolute addresses.
func Fix(ss ScanState, slot Slot) error {
	ref := *slot
	if ref.IsImmediate() {
		return nil
	}
	tag := ref.TagOf()
	addr := ref.Untagged()
	if tag == TagSymbol {
		addr = SymbolArrayBase() + addr
	}
	if !ss.Fix1(addr) {
		return nil
	}
	newAddr, err := ss.Fix2(addr)
	if err != nil {
		return err
	}
	if tag == TagSymbol {
		newAddr -= SymbolArrayBase()
	}
	*slot = WithTag(newAddr, tag)
	return nil
}
