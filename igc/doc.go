// Package igc is the public surface of the collector: process init and
// teardown, the allocation API for conses and symbols, the lifecycle
// hooks a host calls on root-shape-changing events, and the finalization
// pump. Everything below it (internal/mps, internal/format,
// internal/rootreg, internal/threadreg, internal/legacy) is reachable only
// through this package; a host also imports value, for the tagged
// reference type this API takes and returns, and host, the narrow set of
// interfaces a host implements to collaborate with it.
package igc
