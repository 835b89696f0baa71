// Package rootreg implements the Root Registry: a
// doubly linked collection of root handles, each owning one mps.Root and
// the address range it covers, plus the scanner functions for every root
// shape a host can register (memory areas, stacks, static vectors, face
// caches, glyph matrices).
package rootreg
