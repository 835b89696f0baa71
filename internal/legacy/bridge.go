package legacy

import (
	"unsafe"

	"github.com/lumenrt/igc/host"
	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/value"
)

// MarkOldObjectsReferencedFromPools walks every live block in consPool and
// symbolPool and calls mark for each reference that names a legacy-managed
// kind: anything that isn't an immediate, a cons, or a symbol. It does not
// itself chase references past that first hop — the legacy heap's own mark
// phase owns transitive reachability from there, the same division of
// labor a root-scan pass draws against greyed-object processing.
func MarkOldObjectsReferencedFromPools(consPool, symbolPool *mps.Pool, mark host.MarkObject) {
	for _, addr := range consPool.Live() {
		cons := (*value.Cons)(unsafe.Pointer(addr))
		markIfLegacy(cons.Car, mark)
		markIfLegacy(cons.Cdr, mark)
	}
	for _, addr := range symbolPool.Live() {
		sym := (*value.Symbol)(unsafe.Pointer(addr))
		markIfLegacy(sym.Name, mark)
		markIfLegacy(sym.Plist, mark)
		markIfLegacy(sym.Package, mark)
		// Value and Function may be forwarded to another symbol or a
		// per-buffer cell rather than holding a direct reference; the
		// redirect kinds covering that are already the legacy heap's
		// business, whether or not we report them here.
		markIfLegacy(sym.Value, mark)
		markIfLegacy(sym.Function, mark)
	}
}

func markIfLegacy(ref value.Ref, mark host.MarkObject) {
	if ref.IsImmediate() {
		return
	}
	switch ref.TagOf() {
	case value.TagCons, value.TagSymbol:
		return
	default:
		mark(ref)
	}
}
