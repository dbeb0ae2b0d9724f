// Package tensor provides the minimal tensor stand-in the dispatch runtime
// operates on: a shape, a backend dispatch key, and a grad flag. There is no
// data buffer and no arithmetic; kernels that would compute allocate result
// tensors of the right shape instead.
package tensor

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/dispatch"
)

// Tensor is a shape-level tensor. Tensors are shared by pointer: boxing one
// into a dispatch.Value or cloning a Value aliases the same Tensor, which
// stays alive until the last reference is dropped.
type Tensor struct {
	sizes        []int64
	backendKey   dispatch.Key
	requiresGrad atomic.Bool
}

// Compile-time check that Tensor satisfies the dispatcher's tensor surface.
var _ dispatch.Tensor = (*Tensor)(nil)

// New creates a tensor with the given shape on the given backend. The key
// must be a backend key (CPU, CUDA, ...).
func New(sizes []int64, backendKey dispatch.Key) (*Tensor, error) {
	if !backendKey.IsBackendKey() {
		return nil, errors.Errorf("tensor backend key must be a backend key, got %s", backendKey)
	}
	return &Tensor{
		sizes:      append([]int64(nil), sizes...),
		backendKey: backendKey,
	}, nil
}

// NewCPU creates a CPU tensor with the given shape.
func NewCPU(sizes ...int64) *Tensor {
	return &Tensor{sizes: append([]int64(nil), sizes...), backendKey: dispatch.CPU}
}

// NewCUDA creates a CUDA tensor with the given shape.
func NewCUDA(sizes ...int64) *Tensor {
	return &Tensor{sizes: append([]int64(nil), sizes...), backendKey: dispatch.CUDA}
}

// Sizes returns a copy of the tensor's shape.
func (t *Tensor) Sizes() []int64 {
	return append([]int64(nil), t.sizes...)
}

// Dim returns the number of dimensions.
func (t *Tensor) Dim() int64 {
	return int64(len(t.sizes))
}

// Numel returns the total number of elements, or 0 for a dimensionless
// tensor.
func (t *Tensor) Numel() int64 {
	if len(t.sizes) == 0 {
		return 0
	}
	n := int64(1)
	for _, s := range t.sizes {
		n *= s
	}
	return n
}

// BackendKey returns the backend dispatch key the tensor lives on.
func (t *Tensor) BackendKey() dispatch.Key {
	return t.backendKey
}

// SetRequiresGrad marks the tensor as participating (or not) in autograd.
func (t *Tensor) SetRequiresGrad(requiresGrad bool) {
	t.requiresGrad.Store(requiresGrad)
}

// RequiresGrad reports whether the tensor participates in autograd.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad.Load()
}

// IsCPU reports whether the tensor lives on the CPU backend.
func (t *Tensor) IsCPU() bool {
	return t.backendKey == dispatch.CPU
}

// IsCUDA reports whether the tensor lives on the CUDA backend.
func (t *Tensor) IsCUDA() bool {
	return t.backendKey == dispatch.CUDA
}

// KeySet derives the tensor's full dispatch key set: the backend key, plus
// Autograd when the tensor requires grad, plus whatever functionality keys
// are globally enabled.
func (t *Tensor) KeySet() dispatch.KeySet {
	ks := dispatch.NewKeySet(t.backendKey)
	if t.requiresGrad.Load() {
		ks.Add(dispatch.Autograd)
	}
	ks.UnionInPlace(dispatch.State().FunctionalityKeys())
	return ks
}

// Clone returns a new tensor with the same shape, backend, and grad flag.
// Metadata only; there is no data to copy.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{
		sizes:      append([]int64(nil), t.sizes...),
		backendKey: t.backendKey,
	}
	c.requiresGrad.Store(t.requiresGrad.Load())
	return c
}

// DebugString returns e.g. "shape=[2, 3], backend=CPU, requires_grad=true".
func (t *Tensor) DebugString() string {
	var b strings.Builder
	b.WriteString("shape=[")
	for i, s := range t.sizes {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", s)
	}
	fmt.Fprintf(&b, "], backend=%s", t.backendKey)
	if t.requiresGrad.Load() {
		b.WriteString(", requires_grad=true")
	}
	return b.String()
}
