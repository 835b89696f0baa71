package format

import (
	"unsafe"

	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/value"
)

// ConsSize is cons_pool's fixed block size.
var ConsSize = unsafe.Sizeof(value.Cons{})

// Cons is the Object Format cons_pool is bound to:
// scan fixes car then cdr.
var Cons = mps.Format{
	Align:       unsafe.Alignof(value.Cons{}),
	HeaderSize:  0,
	Scan:        consScan,
	Skip:        consSkip,
	Forward:     writeForward,
	IsForwarded: isForwarded,
	Pad:         writePad,
}

func consScan(ss *mps.ScanState, base, limit uintptr) error {
	if _, ok := isForwarded(base); ok {
		return nil
	}
	if _, ok := isPadded(base); ok {
		return nil
	}
	cons := (*value.Cons)(unsafe.Pointer(base))
	if err := value.Fix(ss, &cons.Car); err != nil {
		return err
	}
	return value.Fix(ss, &cons.Cdr)
}

func consSkip(addr uintptr) uintptr {
	if size, ok := isPadded(addr); ok {
		return addr + size
	}
	return addr + ConsSize
}
