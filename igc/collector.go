package igc

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/lumenrt/igc/internal/format"
	"github.com/lumenrt/igc/internal/mps"
	"github.com/lumenrt/igc/internal/rootreg"
	"github.com/lumenrt/igc/internal/threadreg"
	"github.com/lumenrt/igc/value"
)

// Collector is the process-wide arena handle, initialized once and torn
// down at exit. Unlike package-level runtime globals, it is an ordinary
// value so a process can run more than one in tests, but a host embedding
// this library is expected to keep exactly one live at a time.
type Collector struct {
	cfg Config
	log *logrus.Logger

	arena *mps.Arena

	consPool   *mps.Pool
	symbolPool *mps.Pool

	roots   *rootreg.Registry
	threads *threadreg.Registry

	mainThread *threadreg.Handle

	staticVecRoot *rootreg.Handle

	inhibited int32 // atomic; >0 means allocation must not trigger a collection

	finMu      sync.Mutex
	finalizers map[value.Ref]finalizerEntry

	ambigMu    sync.Mutex
	ambigRoots map[uintptr]*ambigRoot
}

type ambigRoot struct {
	storage []byte
	handle  *rootreg.Handle
}

type finalizerEntry struct {
	addr uintptr
	fn   func()
}

// Init creates the arena, generation chain, both object formats and
// pools, enables finalization messages, and registers the calling thread
// as the main thread using mainThreadCold as its control-stack extremum.
// mainThreadCurrentSP is consulted on every collection to find the live
// end of the main thread's stack — see ThreadAdd.
func Init(cfg Config, mainThreadCold uintptr, mainThreadCurrentSP func() uintptr) (*Collector, error) {
	c := &Collector{
		cfg:        cfg,
		log:        newLogger(cfg.Debug),
		roots:      rootreg.New(),
		threads:    threadreg.New(),
		finalizers: make(map[value.Ref]finalizerEntry),
		ambigRoots: make(map[uintptr]*ambigRoot),
	}

	arena, err := mps.NewArena(mps.ClassVM)
	if err != nil {
		c.fatal("arena create", err)
	}
	c.arena = arena

	poolClass := mps.ClassAMS
	if cfg.DebugPool {
		poolClass = mps.ClassAMSDebug
	}

	chain := mps.NewGenChain(cfg.Generations)

	consPool, err := arena.NewPool("cons", poolClass, chain, format.Cons, format.ConsSize)
	if err != nil {
		c.fatal("cons pool create", err)
	}
	c.consPool = consPool

	symbolPool, err := arena.NewPool("symbol", poolClass, chain, format.Symbol, format.SymbolSize)
	if err != nil {
		c.fatal("symbol pool create", err)
	}
	c.symbolPool = symbolPool
	value.SetSymbolArrayBase(symbolPool.Base())

	arena.Messages().Enable()

	th, err := c.ThreadAdd(mainThreadCold, mainThreadCurrentSP)
	if err != nil {
		c.fatal("main thread register", err)
	}
	c.mainThread = th

	if cfg.StaticVec != nil {
		h, err := c.OnStaticVecAdd(cfg.StaticVecStart, cfg.StaticVecEnd, cfg.StaticVec)
		if err != nil {
			c.fatal("static vec root register", err)
		}
		c.staticVecRoot = h
	}

	c.log.WithFields(logrus.Fields{
		"debug_pool":  cfg.DebugPool,
		"manage_cons": cfg.ManageCons,
	}).Debug("igc: init")
	return c, nil
}

// newLogger builds a logrus logger that never calls os.Exit on Fatal,
// since a library must let its host decide what a fatal condition means
// for the whole process — see FatalError.
func newLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.ExitFunc = func(int) {}
	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// MainThread returns the thread handle Init registered for
// mainThreadCold.
func (c *Collector) MainThread() *threadreg.Handle { return c.mainThread }

// Free destroys every pool and releases the arena. The collector must
// not be used afterward.
func (c *Collector) Free() {
	c.log.Debug("igc: free")
	c.arena.Free()
}

// Stats reports current pool occupancy, the Go equivalent of the
// original's garbage-collect-maybe diagnostic query. It reads each pool
// under that pool's own lock, not the arena's, so it may be called while
// the arena is parked, e.g. inside an InhibitGarbageCollection span.
func (c *Collector) Stats() mps.ArenaStats {
	return mps.ArenaStats{Pools: map[string]mps.PoolStats{
		c.consPool.Name():   c.consPool.Stats(),
		c.symbolPool.Name(): c.symbolPool.Stats(),
	}}
}

// onFreed is passed to every Arena collection call. It looks up and
// clears any registered finalizer for addr before the block rejoins its
// pool's free list, then posts a finalization message. Clearing the slot
// before posting makes re-finalization of the same block impossible.
func (c *Collector) onFreed(addr uintptr) {
	c.finMu.Lock()
	var fn func()
	for ref, entry := range c.finalizers {
		if entry.addr == addr {
			fn = entry.fn
			delete(c.finalizers, ref)
			break
		}
	}
	c.finMu.Unlock()
	if fn != nil {
		c.arena.Messages().Post(mps.Message{Ref: addr, Finalize: fn})
	}
}

func (c *Collector) maybeCollect() {
	if atomic.LoadInt32(&c.inhibited) > 0 {
		return
	}
	triggered, stats, err := c.arena.MaybeCollect(c.onFreed)
	if err != nil {
		c.fatal("collect", err)
	}
	if triggered {
		c.log.WithFields(logrus.Fields{
			"major":       stats.Major,
			"freed_bytes": stats.FreedBytes,
			"corrupted":   stats.Corrupted,
		}).Debug("igc: collection")
	}
}
