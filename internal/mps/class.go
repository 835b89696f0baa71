package mps

import "golang.org/x/sys/unix"

// ArenaClass selects how the arena reserves the address space its pools
// carve blocks from.
type ArenaClass int

const (
	// ClassVM reserves anonymous virtual memory directly from the OS via
	// mmap, the way the real MPM's "VM" arena class does and the way a
	// language runtime's own allocator reserves heap pages from the OS.
	ClassVM ArenaClass = iota
)

// PoolClass selects a pool's block-management discipline. Both values name
// the "automatic mark-sweep" family; only fencing/poisoning differs.
type PoolClass int

const (
	// ClassAMS is the plain automatic mark-sweep pool: non-moving, no
	// fencing. This is the class both cons_pool and symbol_pool use
	// during the moving-collector transition.
	ClassAMS PoolClass = iota
	// ClassAMSDebug additionally writes fenceposts around each block and
	// poisons freed memory, gated by Config.DebugPool.
	ClassAMSDebug
)

const (
	fenceWord  = uintptr(0xFEEDFACE)
	poisonByte = byte(0xBD)
)

func vmReserve(size uintptr) ([]byte, error) {
	return unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func vmRelease(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}

// vmDiscard advises the kernel that a swept-empty range is no longer
// needed, the way the host's allocator returns idle heap pages to the OS.
func vmDiscard(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Madvise(b, unix.MADV_DONTNEED)
}
