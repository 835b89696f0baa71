// Package threadreg implements the Thread Registry: a
// doubly linked collection of thread handles, each owning an MPM thread
// registration, the thread's cold stack base, its control-stack and
// specpdl roots, and one allocation point per managed pool.
package threadreg
