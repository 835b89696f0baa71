// Package legacy bridges the collector's pools to a host's own
// non-moving mark-sweep heap.
// During the transition period the collector manages cons cells and
// symbols but leaves strings, vectors, and other kinds to the host's
// existing mark phase; this package walks every live cons and symbol
// block and reports the references they hold into that legacy heap so
// the host's own mark phase can keep following them.
package legacy
