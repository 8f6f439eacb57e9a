//go:build !llama

package engine

import "context"

// llamaBuilt is false: this binary has no CGO llama support.
var llamaBuilt = false

// Load fails fast without the 'llama' build tag.
func (e *LlamaEngine) Load(ctx context.Context, req Request) (Instance, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
