// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU terminal kernels for the demo operator set.
// The kernels are placeholders: they allocate result tensors of the right
// shape on the CPU backend and perform no arithmetic.
package cpu

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/dispatch/dispatch"
	"github.com/born-ml/dispatch/tensor"
)

// Add is the CPU kernel for element-wise addition. Placeholder: the result
// takes the left operand's shape.
func Add(a, b dispatch.Tensor) dispatch.Tensor {
	klog.V(1).InfoS("cpu add", "a", a.DebugString(), "b", b.DebugString())
	return tensor.NewCPU(a.Sizes()...)
}

// Mul is the CPU kernel for element-wise multiplication. Placeholder.
func Mul(a, b dispatch.Tensor) dispatch.Tensor {
	klog.V(1).InfoS("cpu mul", "a", a.DebugString(), "b", b.DebugString())
	return tensor.NewCPU(a.Sizes()...)
}

// ZerosLike is the CPU kernel returning a zero tensor with t's shape.
func ZerosLike(t dispatch.Tensor) dispatch.Tensor {
	return tensor.NewCPU(t.Sizes()...)
}

// PrintInfo logs a tensor's metadata. Demonstrates a unit-returning kernel.
func PrintInfo(t dispatch.Tensor) {
	klog.InfoS("tensor info", "tensor", t.DebugString(), "backend", t.BackendKey())
}

// Register installs the CPU kernels for the demo operator set on d,
// registering the operators as needed.
func Register(d *dispatch.Dispatcher) {
	kernels := map[string]dispatch.Kernel{
		"add":        dispatch.MustFromFunction(Add),
		"mul":        dispatch.MustFromFunction(Mul),
		"zeros_like": dispatch.MustFromFunction(ZerosLike),
		"print_info": dispatch.MustFromFunction(PrintInfo),
	}
	for name, kernel := range kernels {
		d.RegisterOperator(dispatch.OpName(name)).SetKernel(dispatch.CPU, kernel)
	}
}
