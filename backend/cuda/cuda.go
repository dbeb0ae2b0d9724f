// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cuda provides the CUDA terminal kernels for the demo operator
// set. Placeholders like package cpu: right shape, right backend tag, no
// device code.
package cuda

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/dispatch/dispatch"
	"github.com/born-ml/dispatch/tensor"
)

// Add is the CUDA kernel for element-wise addition.
func Add(a, b dispatch.Tensor) dispatch.Tensor {
	klog.V(1).InfoS("cuda add", "a", a.DebugString(), "b", b.DebugString())
	return tensor.NewCUDA(a.Sizes()...)
}

// Mul is the CUDA kernel for element-wise multiplication.
func Mul(a, b dispatch.Tensor) dispatch.Tensor {
	klog.V(1).InfoS("cuda mul", "a", a.DebugString(), "b", b.DebugString())
	return tensor.NewCUDA(a.Sizes()...)
}

// ZerosLike is the CUDA kernel returning a zero tensor with t's shape.
func ZerosLike(t dispatch.Tensor) dispatch.Tensor {
	return tensor.NewCUDA(t.Sizes()...)
}

// Register installs the CUDA kernels for the demo operator set on d,
// registering the operators as needed. print_info has no CUDA kernel; a
// call with CUDA tensors matches it only through a CatchAll kernel, never
// through the CPU kernel.
func Register(d *dispatch.Dispatcher) {
	kernels := map[string]dispatch.Kernel{
		"add":        dispatch.MustFromFunction(Add),
		"mul":        dispatch.MustFromFunction(Mul),
		"zeros_like": dispatch.MustFromFunction(ZerosLike),
	}
	for name, kernel := range kernels {
		d.RegisterOperator(dispatch.OpName(name)).SetKernel(dispatch.CUDA, kernel)
	}
}
