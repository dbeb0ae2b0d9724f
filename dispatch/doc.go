// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dispatch is the public API of the Born dispatch runtime: a
// multi-dimensional operator dispatcher in the style of modern deep-learning
// runtimes.
//
// Given a named operator and a list of boxed arguments, the dispatcher
// derives a dispatch key set from the arguments' backend tags and the
// process-wide feature flags, then invokes the highest-priority kernel
// registered for that set. Functionality wrappers (Autograd, Tracing,
// Profiling) outrank backend kernels (CPU, CUDA) and redispatch with their
// own key masked off, so they stack in priority order on top of the terminal
// backend implementation.
//
// Example:
//
//	d := dispatch.Default()
//	op := d.RegisterOperator(dispatch.OpName("add"))
//	op.SetKernel(dispatch.CPU, dispatch.MustFromFunction(
//	    func(a, b dispatch.Tensor) dispatch.Tensor { return addCPU(a, b) },
//	))
//
//	x := tensor.NewCPU(2, 3)
//	y := tensor.NewCPU(2, 3)
//	result, err := d.CallByName("add", []dispatch.Value{
//	    dispatch.NewTensorValue(x),
//	    dispatch.NewTensorValue(y),
//	})
package dispatch
