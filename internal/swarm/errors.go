package swarm

import "errors"

// ErrConfig tags configuration errors: invalid mode, non-positive agent
// or round counts, missing codec. These are fatal at startup and map to
// a distinct process exit code; nothing mid-run wraps ErrConfig.
var ErrConfig = errors.New("swarm: invalid configuration")
