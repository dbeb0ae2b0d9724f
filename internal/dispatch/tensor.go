package dispatch

// Tensor is the surface of a tensor the dispatcher depends on. The concrete
// implementation lives in internal/tensor; the dispatcher only ever consumes
// the backend tag, the grad flag, and the derived key set.
type Tensor interface {
	// Sizes returns the tensor's shape.
	Sizes() []int64

	// BackendKey returns the backend dispatch key (CPU, CUDA, ...) the
	// tensor's data lives on. Always a backend key.
	BackendKey() Key

	// RequiresGrad reports whether the tensor participates in autograd.
	RequiresGrad() bool

	// KeySet returns the full dispatch key set derived from the tensor:
	// its backend key, Autograd if RequiresGrad, and the global
	// functionality keys.
	KeySet() KeySet

	// DebugString returns a human-readable description of the tensor.
	DebugString() string
}

// ComputeKeySetForTensors unions the key sets of all given tensors. With no
// tensors (a scalar-only call) the result falls back to the globally enabled
// functionality keys.
func ComputeKeySetForTensors(tensors []Tensor) KeySet {
	var combined KeySet
	for _, t := range tensors {
		if t != nil {
			combined.UnionInPlace(t.KeySet())
		}
	}
	if combined.IsEmpty() {
		combined = State().FunctionalityKeys()
	}
	return combined
}
