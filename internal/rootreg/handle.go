package rootreg

import "github.com/lumenrt/igc/internal/mps"

// Handle is one registered root: the MPM root object it owns and the
// address range it covers. Owner is an
// opaque back-reference the registering hook can stash context in; the
// registry never dereferences it.
type Handle struct {
	Owner   any
	mpsRoot *mps.Root
	Start   uintptr
	End     uintptr
	prev    *Handle
	next    *Handle
}
