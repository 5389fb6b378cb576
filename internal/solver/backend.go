package solver

import "context"

// Backend solves a single Instance under Params, the single
// `solve(Precomputed, limits) -> Result` interface spec.md §9 asks both
// backends to share.
type Backend interface {
	Name() string
	Solve(ctx context.Context, inst *Instance, params Params) (Result, error)
}
