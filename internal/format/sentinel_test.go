package format

import (
	"testing"
	"unsafe"
)

func newBlock(size uintptr) uintptr {
	buf := make([]byte, size)
	return uintptr(unsafe.Pointer(&buf[0]))
}

func TestIsForwardedRoundTrip(t *testing.T) {
	addr := newBlock(ConsSize)
	if _, ok := isForwarded(addr); ok {
		t.Fatal("fresh block reported forwarded")
	}
	writeForward(addr, addr+0x100)
	to, ok := isForwarded(addr)
	if !ok {
		t.Fatal("forwarded block not detected")
	}
	if to != addr+0x100 {
		t.Fatalf("forward target: got %#x, want %#x", to, addr+0x100)
	}
}

func TestIsPaddedRoundTrip(t *testing.T) {
	addr := newBlock(ConsSize)
	if _, ok := isPadded(addr); ok {
		t.Fatal("fresh block reported padded")
	}
	writePad(addr, ConsSize)
	size, ok := isPadded(addr)
	if !ok {
		t.Fatal("padded block not detected")
	}
	if size != ConsSize {
		t.Fatalf("pad size: got %d, want %d", size, ConsSize)
	}
}

func TestConsSkipHonorsPad(t *testing.T) {
	addr := newBlock(ConsSize * 2)
	writePad(addr, ConsSize*2)
	if got := consSkip(addr); got != addr+ConsSize*2 {
		t.Fatalf("consSkip on pad: got %#x, want %#x", got, addr+ConsSize*2)
	}
}

func TestConsSkipDefaultsToConsSize(t *testing.T) {
	addr := newBlock(ConsSize)
	if got := consSkip(addr); got != addr+ConsSize {
		t.Fatalf("consSkip live: got %#x, want %#x", got, addr+ConsSize)
	}
}
