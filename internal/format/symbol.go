package format

import (
	"unsafe"

	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/value"
)

// SymbolSize is symbol_pool's fixed block size.
var SymbolSize = unsafe.Sizeof(value.Symbol{})

// Symbol is the Object Format symbol_pool is bound to:
// scan always fixes name, and fixes value/function/plist/package only
// when the symbol's redirect kind is PlainVal — the other redirect kinds
// (variable alias, buffer-local, C-forwarded) are the legacy mark phase's
// responsibility.
var Symbol = mps.Format{
	Align:       unsafe.Alignof(value.Symbol{}),
	HeaderSize:  0,
	Scan:        symbolScan,
	Skip:        symbolSkip,
	Forward:     writeForward,
	IsForwarded: isForwarded,
	Pad:         writePad,
}

func symbolScan(ss *mps.ScanState, base, limit uintptr) error {
	if _, ok := isForwarded(base); ok {
		return nil
	}
	if _, ok := isPadded(base); ok {
		return nil
	}
	sym := (*value.Symbol)(unsafe.Pointer(base))
	if err := value.Fix(ss, &sym.Name); err != nil {
		return err
	}
	if sym.Redirect != value.RedirectPlainVal {
		return nil
	}
	if err := value.Fix(ss, &sym.Value); err != nil {
		return err
	}
	if err := value.Fix(ss, &sym.Function); err != nil {
		return err
	}
	if err := value.Fix(ss, &sym.Plist); err != nil {
		return err
	}
	return value.Fix(ss, &sym.Package)
}

func symbolSkip(addr uintptr) uintptr {
	if size, ok := isPadded(addr); ok {
		return addr + size
	}
	return addr + SymbolSize
}
