package mps

// Generation is one (capacity, mortality) pair of a generation chain:
// capacity bytes of allocation before this generation is due for
// collection, and mortality the predicted fraction of it that dies; the
// remaining 1-mortality is the predicted survival used to size the next
// generation's headroom.
type Generation struct {
	Capacity  uint64
	Mortality float64
}

// DefaultGenerations are the two generations used when a host doesn't
// supply its own.
func DefaultGenerations() [2]Generation {
	return [2]Generation{
		{Capacity: 32000, Mortality: 0.8},
		{Capacity: 160045, Mortality: 0.4},
	}
}

// GenChain tracks allocation against a generation chain to decide when a
// minor or major collection is due. It does not move objects between
// generations — both pools bound to it use the non-moving AMS class during
// the transition period — it only paces collection.
type GenChain struct {
	gens      [2]Generation
	allocated [2]uint64 // bytes allocated since the generation's last collection
	minorRuns uint64    // minor collections since the last major one
}

// NewGenChain builds a chain from the given generation pairs.
func NewGenChain(gens [2]Generation) *GenChain {
	return &GenChain{gens: gens}
}

// RecordAlloc charges n bytes against generation 0, the nursery every
// allocation lands in first.
func (c *GenChain) RecordAlloc(n uint64) {
	c.allocated[0] += n
}

// Due reports whether the nursery has crossed its capacity and, if so,
// whether generation 1's running total plus the nursery's predicted
// survivors would reach generation 1's capacity, warranting a major
// (full-chain) collection instead of a minor (generation-0-only) one.
func (c *GenChain) Due() (trigger, major bool) {
	if c.allocated[0] < c.gens[0].Capacity {
		return false, false
	}
	// A major collection is due once the survivors we'd expect to have
	// promoted would themselves fill generation 1's capacity.
	promoted := float64(c.allocated[0]) * (1 - c.gens[0].Mortality)
	major = float64(c.allocated[1])+promoted >= float64(c.gens[1].Capacity)
	return true, major
}

// Collected resets the nursery's allocation counter after a collection,
// and folds its survivors into generation 1's running total. On a major
// collection generation 1's counter is reset too.
func (c *GenChain) Collected(major bool, survivedBytes uint64) {
	c.allocated[1] += survivedBytes
	c.allocated[0] = 0
	if major {
		c.allocated[1] = 0
		c.minorRuns = 0
		return
	}
	c.minorRuns++
}

// Generations returns the configured (capacity, mortality) pairs.
func (c *GenChain) Generations() [2]Generation {
	return c.gens
}
