package engine

import "errors"

// ErrEngineInvariant indicates the scheduler reached an impossible state:
// nodes are still pending but none is ready and nothing failed. With cycle
// detection at build time this cannot happen; it is checked anyway so a bug
// surfaces as a failed run instead of a hang.
var ErrEngineInvariant = errors.New("engine invariant violated: pending nodes but none ready")
