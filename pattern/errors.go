package pattern

import "errors"

// Fatal, typed failures raised while synthesizing patterns and segments
// from a GTFSLoader's output.
var (
	// ErrPatternHashCollision is raised when the number of distinct
	// stop-sequence hashes does not match the number of distinct
	// stop-id sequences: the hashing scheme failed to stay injective.
	ErrPatternHashCollision = errors.New("pattern: hash collision between distinct stop sequences")
)

// ErrShapeMatchFailed is not returned by this package: SynthesizeSegments
// keeps a pattern's two-stop polylines without an error when no shape
// is found for it.
var ErrShapeMatchFailed = errors.New("pattern: no usable shape match")
