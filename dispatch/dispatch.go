// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dispatch

import (
	internal "github.com/born-ml/dispatch/internal/dispatch"
)

// Type aliases for the public API.

// Key identifies one dispatch dimension (backend or functionality).
type Key = internal.Key

// Dispatch keys.
const (
	CPU       Key = internal.CPU
	CUDA      Key = internal.CUDA
	Autograd  Key = internal.Autograd
	Tracing   Key = internal.Tracing
	Profiling Key = internal.Profiling
	Undefined Key = internal.Undefined
	CatchAll  Key = internal.CatchAll
	NumKeys   Key = internal.NumKeys
)

// KeySet is a value-typed set of dispatch keys ordered by priority.
type KeySet = internal.KeySet

// NewKeySet returns the set containing the given keys.
func NewKeySet(keys ...Key) KeySet {
	return internal.NewKeySet(keys...)
}

// Tag identifies the active variant of a Value.
type Tag = internal.Tag

// Value variants.
const (
	TagNone       Tag = internal.TagNone
	TagTensor     Tag = internal.TagTensor
	TagDouble     Tag = internal.TagDouble
	TagInt        Tag = internal.TagInt
	TagBool       Tag = internal.TagBool
	TagString     Tag = internal.TagString
	TagIntList    Tag = internal.TagIntList
	TagDoubleList Tag = internal.TagDoubleList
	TagTensorList Tag = internal.TagTensorList
)

// Value is the boxed argument and return type of the uniform calling
// convention.
type Value = internal.Value

// Value constructors.

// None returns the None value.
func None() Value { return internal.None() }

// NewTensorValue boxes a tensor.
func NewTensorValue(t Tensor) Value { return internal.NewTensorValue(t) }

// NewDoubleValue boxes a float64.
func NewDoubleValue(v float64) Value { return internal.NewDoubleValue(v) }

// NewIntValue boxes an int64.
func NewIntValue(v int64) Value { return internal.NewIntValue(v) }

// NewBoolValue boxes a bool.
func NewBoolValue(v bool) Value { return internal.NewBoolValue(v) }

// NewStringValue boxes a string.
func NewStringValue(v string) Value { return internal.NewStringValue(v) }

// NewIntListValue boxes an int64 slice.
func NewIntListValue(v []int64) Value { return internal.NewIntListValue(v) }

// NewDoubleListValue boxes a float64 slice.
func NewDoubleListValue(v []float64) Value { return internal.NewDoubleListValue(v) }

// NewTensorListValue boxes a tensor slice.
func NewTensorListValue(v []Tensor) Value { return internal.NewTensorListValue(v) }

// Tensor is the surface of a tensor the dispatcher depends on. The concrete
// implementation lives in the tensor package.
type Tensor = internal.Tensor

// Kernel wraps a boxed kernel function.
type Kernel = internal.Kernel

// BoxedFunc is the canonical kernel form.
type BoxedFunc = internal.BoxedFunc

// KeyedBoxedFunc is a boxed kernel that also receives the dispatched key
// set; wrapper kernels use it to mask their own key before redispatching.
type KeyedBoxedFunc = internal.KeyedBoxedFunc

// NewKernel wraps an already-boxed function.
func NewKernel(fn BoxedFunc) Kernel { return internal.NewKernel(fn) }

// NewKeyedKernel wraps a boxed function that receives the dispatched key
// set.
func NewKeyedKernel(fn KeyedBoxedFunc) Kernel { return internal.NewKeyedKernel(fn) }

// FromFunction adapts a natively typed function to the boxed calling
// convention; the signature is validated at registration time.
func FromFunction(fn any) (Kernel, error) { return internal.FromFunction(fn) }

// MustFromFunction is FromFunction that panics on a malformed signature.
func MustFromFunction(fn any) Kernel { return internal.MustFromFunction(fn) }

// OperatorName identifies an operator by base name and optional overload.
type OperatorName = internal.OperatorName

// OpName returns the OperatorName for a base name with no overload.
func OpName(base string) OperatorName { return internal.OpName(base) }

// Handle is the per-operator dispatch table.
type Handle = internal.Handle

// Dispatcher is the process-wide operator registry and call entry point.
type Dispatcher = internal.Dispatcher

// RegistrationCallback observes operator (de)registration.
type RegistrationCallback = internal.RegistrationCallback

// CallStats accumulates per-operator call counters while profiling is
// enabled.
type CallStats = internal.CallStats

// New returns an empty Dispatcher, for tests that want an isolated registry.
func New() *Dispatcher { return internal.New() }

// Default returns the process-wide dispatcher.
func Default() *Dispatcher { return internal.Default() }

// GlobalState holds the process-wide feature flags.
type GlobalState = internal.GlobalState

// State returns the process-wide dispatch state.
func State() *GlobalState { return internal.State() }

// NewState returns a fresh state with all flags disabled.
func NewState() *GlobalState { return internal.NewState() }

// ComputeKeySet derives the dispatch key set for a boxed argument list.
func ComputeKeySet(args []Value) KeySet { return internal.ComputeKeySet(args) }

// ComputeKeySetForTensors unions the key sets of the given tensors.
func ComputeKeySetForTensors(tensors []Tensor) KeySet {
	return internal.ComputeKeySetForTensors(tensors)
}

// Error kinds.

// ErrInvalidKernel is returned when an uninitialized kernel is invoked.
var ErrInvalidKernel = internal.ErrInvalidKernel

// UnknownOperatorError reports a call to an unregistered operator.
type UnknownOperatorError = internal.UnknownOperatorError

// NoKernelError reports a dispatch key set no registered kernel matches.
type NoKernelError = internal.NoKernelError

// ArityMismatchError reports a boxed call with the wrong argument count.
type ArityMismatchError = internal.ArityMismatchError

// TypeMismatchError reports an access to the wrong Value variant.
type TypeMismatchError = internal.TypeMismatchError

// Convenience helpers on the default dispatcher, mirroring the registration
// and call entry points most programs need.

// RegisterOp registers name (no overload) on the default dispatcher.
func RegisterOp(name string) *Handle {
	return Default().RegisterOperator(OpName(name))
}

// CallOp calls name on the default dispatcher with an automatically derived
// key set.
func CallOp(name string, args []Value) ([]Value, error) {
	return Default().CallByName(name, args)
}

// CallOpWithKeys calls name on the default dispatcher with an explicit key
// set, like Default().CallWithKeys.
func CallOpWithKeys(name OperatorName, ks KeySet, args []Value) ([]Value, error) {
	return Default().CallWithKeys(name, ks, args)
}
