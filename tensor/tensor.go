// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dispatch runtime's tensor
// stand-in: shape, backend key, and grad flag. No data buffer, no
// arithmetic; the dispatcher only consumes the tensor's dispatch attributes.
//
// Example:
//
//	x := tensor.NewCPU(2, 3)
//	x.SetRequiresGrad(true)
//	x.KeySet() // {Autograd, CPU}
package tensor

import (
	"github.com/born-ml/dispatch/dispatch"
	internal "github.com/born-ml/dispatch/internal/tensor"
)

// Tensor is a shape-level tensor shared by pointer between boxed values.
type Tensor = internal.Tensor

// Compile-time check that Tensor satisfies the dispatcher's tensor surface.
var _ dispatch.Tensor = (*Tensor)(nil)

// New creates a tensor with the given shape on the given backend key.
func New(sizes []int64, backendKey dispatch.Key) (*Tensor, error) {
	return internal.New(sizes, backendKey)
}

// NewCPU creates a CPU tensor with the given shape.
func NewCPU(sizes ...int64) *Tensor {
	return internal.NewCPU(sizes...)
}

// NewCUDA creates a CUDA tensor with the given shape.
func NewCUDA(sizes ...int64) *Tensor {
	return internal.NewCUDA(sizes...)
}
