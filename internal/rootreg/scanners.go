package rootreg

import (
	"unsafe"

	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/value"
)

// ScanMemArea conservatively scans every word in [start,end) as a
// candidate tagged reference: the generic "memory area" root shape (an
// ambiguous C stack or binding-record range). Any word whose tag bits
// match a live value.Tag is fixed; words that don't decode to anything
// the collector manages are simply left alone by value.Fix.
func ScanMemArea(start, end uintptr) func(ss *mps.ScanState) error {
	return func(ss *mps.ScanState) error {
		for addr := start; addr+unsafe.Sizeof(value.Ref(0)) <= end; addr += unsafe.Sizeof(value.Ref(0)) {
			slot := (*value.Ref)(unsafe.Pointer(addr))
			if err := value.Fix(ss, slot); err != nil {
				return err
			}
		}
		return nil
	}
}

// ScanStaticVec scans a staticvec root: an array of pointers to tagged
// words, where entries may be nil. get(i) must return the address of the
// i'th slot, or 0 if that slot is unused.
func ScanStaticVec(length int, get func(i int) uintptr) func(ss *mps.ScanState) error {
	return func(ss *mps.ScanState) error {
		for i := 0; i < length; i++ {
			addr := get(i)
			if addr == 0 {
				continue
			}
			slot := (*value.Ref)(unsafe.Pointer(addr))
			if err := value.Fix(ss, slot); err != nil {
				return err
			}
		}
		return nil
	}
}

// ScanFacesByID scans a host face table: an array of face records, each
// holding a small inline vector of references. table(id) returns nil for
// an unused face slot.
func ScanFacesByID(count int, table func(id int) []uintptr) func(ss *mps.ScanState) error {
	return func(ss *mps.ScanState) error {
		for id := 0; id < count; id++ {
			refs := table(id)
			for _, addr := range refs {
				slot := (*value.Ref)(unsafe.Pointer(addr))
				if err := value.Fix(ss, slot); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// ScanStack conservatively scans a thread's control stack from cold (the
// extremum captured at thread_add time) up to whatever currentSP reports
// at scan time. Grounded on the same ambiguous word-scan as ScanMemArea,
// but re-reads its upper bound on every call since a stack's live extent
// changes with every call frame the thread pushes.
func ScanStack(cold uintptr, currentSP func() uintptr) func(ss *mps.ScanState) error {
	return func(ss *mps.ScanState) error {
		top := currentSP()
		start, end := cold, top
		if start > end {
			start, end = end, start
		}
		return ScanMemArea(start, end)(ss)
	}
}

// GlyphRow describes one row's sub-range of glyphs in a glyph matrix, each
// glyph's object field holding one reference.
type GlyphRow struct {
	ObjectAddrs []uintptr
}

// ScanGlyphRows scans a glyph row matrix root: an array of rows, each with
// a ranged sub-array of glyphs whose object field is a reference.
func ScanGlyphRows(rows func() []GlyphRow) func(ss *mps.ScanState) error {
	return func(ss *mps.ScanState) error {
		for _, row := range rows() {
			for _, addr := range row.ObjectAddrs {
				slot := (*value.Ref)(unsafe.Pointer(addr))
				if err := value.Fix(ss, slot); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
