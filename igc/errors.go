package igc

import "fmt"

// FatalError wraps a condition this package treats as unrecoverable: MPM
// failure during arena/pool/format/root creation, or an overlap-invariant
// violation surviving past parking. A standalone runtime would throw and
// kill the whole process for the equivalent case; embedding this
// collector as a library instead panics with FatalError so a host can
// recover at its own top level rather than losing the process out from
// under it.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("igc: fatal: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// fatal logs op/err at Fatal level (without exiting the process — see
// newLogger) and panics with a *FatalError, the library-safe
// equivalent of aborting the process.
func (c *Collector) fatal(op string, err error) {
	c.log.WithError(err).Fatal(op)
	panic(&FatalError{Op: op, Err: err})
}
