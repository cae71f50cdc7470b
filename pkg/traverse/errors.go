package traverse

import "errors"

// ErrMaxDepth is reported by Err when a traversal stopped because it would
// descend past Options.MaxDepth.
var ErrMaxDepth = errors.New("maximum traversal depth exceeded")
