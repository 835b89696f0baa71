package igc

import (
	"time"

	"github.com/lumenrt/igc/host"
	"github.com/lumenrt/igc/internal/mps"
)

// Config holds the tunables this collector exposes as compile-time or
// config knobs (IGC_DEBUG, IGC_DEBUG_POOL, IGC_MANAGE_CONS), set once at
// Init rather than parsed from a flag set — this core has no CLI.
type Config struct {
	// Debug gates structured debug logging of hook invocations and
	// collection cycles (IGC_DEBUG).
	Debug bool

	// DebugPool selects the fenceposted, poison-on-free pool class for
	// both managed pools (IGC_DEBUG_POOL).
	DebugPool bool

	// ManageCons is the master switch for collector-managed conses and
	// symbols (IGC_MANAGE_CONS). When false, Init still creates the
	// arena and pools, but MakeCons and AllocSymbol return an error
	// instead of allocating.
	ManageCons bool

	// Generations are the two (capacity, mortality) pairs both pools
	// share one generation chain with.
	Generations [2]mps.Generation

	// IdleBudget is the time budget OnIdle hands the arena for
	// incremental work per call.
	IdleBudget time.Duration

	// StaticVec, if non-nil, is registered as an ambiguous root during
	// Init by calling OnStaticVecAdd(StaticVecStart, StaticVecEnd,
	// StaticVec): the host's table of statically allocated reference
	// slots. Left nil for a host with no such table, or for a host that
	// prefers to call OnStaticVecAdd itself once the table exists.
	StaticVec                    host.StaticVec
	StaticVecStart, StaticVecEnd uintptr
}

// DefaultConfig returns the baseline defaults: conses and symbols
// managed, generations {(32000, 0.8), (160045, 0.4)}, a 10ms idle budget,
// both debug knobs off.
func DefaultConfig() Config {
	return Config{
		ManageCons:  true,
		Generations: mps.DefaultGenerations(),
		IdleBudget:  10 * time.Millisecond,
	}
}
