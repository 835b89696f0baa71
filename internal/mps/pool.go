package mps

import (
	"sync"
	"unsafe"
)

const noFree = ^uintptr(0)

// PoolStats summarizes one pool's occupancy, the Go port's stand-in for
// the original's mps_pool_t size queries used by its diagnostic commands.
type PoolStats struct {
	Reserved  uintptr // bytes of backing slab
	Committed uintptr // bytes currently handed out and live
	Live      int     // number of live blocks
}

// Pool is a named bag of fixed-layout blocks of one kind.
// Blocks are carved from a single VM-backed slab; freed blocks are kept
// on an in-band singly linked free list, the same free-list-in-the-block
// idiom a thread-local allocation cache uses for its own free spans.
type Pool struct {
	mu sync.Mutex

	name     string
	class    PoolClass
	chain    *GenChain
	format   Format
	elemSize uintptr

	slab     []byte
	slabBase uintptr
	stride   uintptr // bytes occupied per block in the slab, >= elemSize
	fenced   uintptr // 0, or wordSize when class == ClassAMSDebug
	freeHead uintptr // offset from slabBase of first free block, or noFree
	frontier uintptr // offset from slabBase of the next never-used block

	live map[uintptr]bool // live block addresses (absolute)
}

const wordSize = unsafe.Sizeof(uintptr(0))

// NewPool reserves a VM-backed slab sized to the chain's total generation
// capacity and carves it into elemSize blocks. ClassAMSDebug additionally
// reserves a fencepost word on either side of every block, written on
// commit and checked on sweep.
func NewPool(name string, class PoolClass, chain *GenChain, format Format, elemSize uintptr) (*Pool, error) {
	gens := chain.Generations()
	total := uintptr(gens[0].Capacity + gens[1].Capacity)

	var fenced, stride uintptr
	if class == ClassAMSDebug {
		fenced = wordSize
		stride = elemSize + 2*wordSize
	} else {
		stride = elemSize
	}
	// Round up so at least one block fits even for a tiny configured
	// capacity; a pool that can never hand out a block is a config bug
	// its caller should see as an allocation failure, not an init panic.
	if total < stride {
		total = stride
	}
	slab, err := vmReserve(total)
	if err != nil {
		return nil, err
	}
	return &Pool{
		name:     name,
		class:    class,
		chain:    chain,
		format:   format,
		elemSize: elemSize,
		slab:     slab,
		slabBase: uintptr(unsafe.Pointer(&slab[0])),
		stride:   stride,
		fenced:   fenced,
		freeHead: noFree,
		live:     make(map[uintptr]bool),
	}, nil
}

// Destroy releases the pool's backing VM reservation. The pool must not be
// used afterward.
func (p *Pool) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return vmRelease(p.slab)
}

func (p *Pool) contains(addr uintptr) bool {
	return addr >= p.slabBase && addr < p.slabBase+uintptr(len(p.slab))
}

func (p *Pool) isLive(addr uintptr) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live[addr]
}

// reserve hands out the next available block's usable address without
// marking it live; the caller (AllocPoint) must Commit before the address
// is visible to a collection.
func (p *Pool) reserve() (uintptr, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.freeHead != noFree {
		strideOff := p.freeHead
		usable := p.slabBase + strideOff + p.fenced
		p.freeHead = p.readFreeLink(usable)
		return usable, nil
	}
	if p.frontier+p.stride > uintptr(len(p.slab)) {
		return 0, errAllocExhausted
	}
	strideOff := p.frontier
	p.frontier += p.stride
	return p.slabBase + strideOff + p.fenced, nil
}

// commit marks addr live and, for ClassAMSDebug, writes its fenceposts.
// It does not touch the block's usable bytes: MakeCons writes car/cdr
// between reserve and commit, so commit must not clobber them; AllocSymbol
// leaves them for the caller to fill in afterward. A block handed out by
// reserve off the free list may carry stale bytes from its previous
// occupant beyond what the caller is about to overwrite — contents are
// left uninitialized, literally. This is the reserve/commit protocol's
// allocator side: commit is allowed to fail (e.g. a concurrent collection
// reclaimed the nursery out from under the reservation); this
// simulation's commit never actually fails once reserve succeeded, since
// collections only run with the pool's own lock held, but the signature
// mirrors the real protocol so callers retry uniformly.
func (p *Pool) commit(addr uintptr) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fenced > 0 {
		strideOff := addr - p.fenced - p.slabBase
		p.writeWord(p.slabBase+strideOff, fenceWord)
		p.writeWord(addr+p.elemSize, fenceWord)
	}
	p.live[addr] = true
	p.chain.RecordAlloc(uint64(p.elemSize))
}

func (p *Pool) blockBytes(addr uintptr) []byte {
	off := addr - p.slabBase
	return p.slab[off : off+p.elemSize]
}

func (p *Pool) readWord(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(&p.slab[addr-p.slabBase]))
}

func (p *Pool) writeWord(addr, v uintptr) {
	*(*uintptr)(unsafe.Pointer(&p.slab[addr-p.slabBase])) = v
}

func (p *Pool) readFreeLink(usableAddr uintptr) uintptr {
	return p.readWord(usableAddr)
}

func (p *Pool) writeFreeLink(usableAddr, nextStrideOff uintptr) {
	p.writeWord(usableAddr, nextStrideOff)
}

// fencesIntact reports whether addr's fenceposts still hold their
// sentinel value. Used for the debug pool's best-effort corruption check
// on sweep; it never aborts the sweep, since fatal treatment is reserved
// for init-time MPM failures, not user-code overruns.
func (p *Pool) fencesIntact(addr uintptr) bool {
	if p.fenced == 0 {
		return true
	}
	strideOff := addr - p.fenced - p.slabBase
	return p.readWord(p.slabBase+strideOff) == fenceWord && p.readWord(addr+p.elemSize) == fenceWord
}

// sweep drops every live block not present in marked, returning it to the
// free list. It returns the number of bytes reclaimed and the number of
// blocks whose fenceposts had been overrun (always 0 outside
// ClassAMSDebug). Called with the arena parked, so no lock ordering
// hazard with reserve/commit.
func (p *Pool) sweep(marked map[uintptr]bool, onFreed func(addr uintptr)) (freed uintptr, corrupted int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for addr := range p.live {
		if marked[addr] {
			continue
		}
		delete(p.live, addr)
		if p.class == ClassAMSDebug {
			if !p.fencesIntact(addr) {
				corrupted++
			}
			p.poison(addr)
		}
		strideOff := addr - p.fenced - p.slabBase
		p.writeFreeLink(addr, p.freeHead)
		p.freeHead = strideOff
		freed += p.elemSize
		if onFreed != nil {
			onFreed(addr)
		}
	}

	// A generation swept back to fully empty has no live blocks left to
	// chain a free list through, so its pages can be returned to the OS
	// outright instead: reset to the pool's virgin state (bump allocation
	// from offset zero, no free list) and advise the kernel the slab's
	// used range is reclaimable. Discarding the pages without this reset
	// would zero the free-list links sweep just wrote into them.
	if len(p.live) == 0 && p.frontier > 0 {
		vmDiscard(p.slab[:p.frontier])
		p.freeHead = noFree
		p.frontier = 0
	}
	return freed, corrupted
}

func (p *Pool) poison(addr uintptr) {
	block := p.blockBytes(addr)
	for i := range block {
		block[i] = poisonByte
	}
}

// Live returns a snapshot of currently live block addresses, used by the
// legacy-mark bridge and by collection root-set diagnostics.
func (p *Pool) Live() []uintptr {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uintptr, 0, len(p.live))
	for addr := range p.live {
		out = append(out, addr)
	}
	return out
}

// Stats reports current occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Reserved:  uintptr(len(p.slab)),
		Committed: uintptr(len(p.live)) * p.elemSize,
		Live:      len(p.live),
	}
}

// ElemSize returns the fixed block size this pool hands out.
func (p *Pool) ElemSize() uintptr { return p.elemSize }

// Name returns the pool's diagnostic name.
func (p *Pool) Name() string { return p.name }

// Base returns the pool's backing slab's base address, stable for the
// pool's entire lifetime (it is never moved or resized after NewPool).
// The symbol pool's base is what value.SetSymbolArrayBase installs, since
// symbol references store an offset from it rather than an absolute
// address.
func (p *Pool) Base() uintptr { return p.slabBase }
