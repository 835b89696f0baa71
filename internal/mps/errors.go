package mps

import "errors"

var (
	errNotInPool      = errors.New("mps: address does not name a block in any managed pool")
	errDanglingRef    = errors.New("mps: address names a block that is not currently live")
	errAllocExhausted = errors.New("mps: pool exhausted its backing reservation")
)

// ErrCommitFailed is returned by AllocPoint.Commit when the MPM decided
// the reservation could not be finalized (e.g. a concurrent collection
// touched the nursery); callers must redo the whole reserve/write/commit
// cycle, never reuse the stale address.
var ErrCommitFailed = errors.New("mps: commit failed, reservation must be redone")
