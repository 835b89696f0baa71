package igc

import (
	"fmt"

	"github.com/lumenrt/igc/internal/rootreg"
	"github.com/lumenrt/igc/internal/threadreg"
)

// ThreadAdd registers the calling thread: it registers
// a thread with the MPM, appends a thread handle, installs an ambiguous
// stack root covering [cold, currentSP()) re-evaluated on every scan, and
// creates one allocation point per managed pool. The value-binding stack
// root is not installed here — call OnAllocMainThreadSpecpdl once that
// stack exists.
func (c *Collector) ThreadAdd(cold uintptr, currentSP func() uintptr) (*threadreg.Handle, error) {
	mpsThread := c.arena.NewThread()
	th := c.threads.Add(mpsThread, cold, c.consPool, c.symbolPool)

	scan := rootreg.ScanStack(cold, currentSP)
	stackRoot, err := c.roots.RegisterRoot(c.arena, cold, cold, th, scan)
	if err != nil {
		return nil, fmt.Errorf("igc: thread stack root: %w", err)
	}
	th.StackRoot = stackRoot

	c.log.WithField("cold", fmt.Sprintf("%#x", cold)).Debug("igc: thread add")
	return th, nil
}

// ThreadRemove tears down th's allocation points and roots, then
// deregisters the thread with the MPM and unlinks the handle. Root
// teardown happens first here since a root referencing a handle about to
// be freed must not outlive it.
func (c *Collector) ThreadRemove(th *threadreg.Handle) {
	if th.StackRoot != nil {
		c.roots.RemoveRoot(th.StackRoot)
		th.StackRoot = nil
	}
	if th.SpecpdlRoot != nil {
		c.roots.RemoveRoot(th.SpecpdlRoot)
		th.SpecpdlRoot = nil
	}
	c.threads.Remove(th)
	c.log.Debug("igc: thread remove")
}
