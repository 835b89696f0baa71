// Package value defines the tagged-reference data model shared by every
// layer of the collector: the machine-word representation the host's
// reader and evaluator already use, and the fix primitive that keeps a
// reference correct across a collection cycle.
package value
