// Package format implements the Object Format contract
// for the two pools this collector manages directly: cons cells and
// symbols. Each format decodes the host's tagged-reference scheme (package
// value) over the raw addresses internal/mps hands it, and is the only
// place that scheme and the MPM's address-only view of the world meet.
package format
