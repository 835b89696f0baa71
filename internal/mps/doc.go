// Package mps is this module's stand-in for the general-purpose memory
// pool manager the real collector is built on. It implements exactly
// what the rest of this module needs — arena creation on a VM-backed
// class, generation chains, automatic mark-sweep pool classes (with an
// optional debug fencing variant), allocation points with reserve/commit,
// roots with user-supplied scanners, park/release, a time-budgeted step,
// and a finalization message queue — and nothing more. Nothing outside
// this package may assume any tracing or allocation algorithm beyond what
// is exposed here; the rest of the module only ever calls through Arena,
// Pool, Format, Root, Thread, AllocPoint and ScanState.
package mps
