package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidKernel(t *testing.T) {
	var k Kernel
	assert.False(t, k.IsValid())

	_, err := k.CallBoxed(nil)
	require.ErrorIs(t, err, ErrInvalidKernel)
}

func TestBoxedKernel(t *testing.T) {
	k := NewKernel(func(args []Value) ([]Value, error) {
		return []Value{NewIntValue(int64(len(args)))}, nil
	})
	require.True(t, k.IsValid())

	out, err := k.CallBoxed([]Value{None(), None()})
	require.NoError(t, err)
	require.Len(t, out, 1)
	n, err := out[0].ToInt()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestFromFunctionTensorKernel(t *testing.T) {
	called := false
	k, err := FromFunction(func(a, b Tensor) Tensor {
		called = true
		return &fakeTensor{sizes: a.Sizes(), key: a.BackendKey()}
	})
	require.NoError(t, err)

	x := &fakeTensor{sizes: []int64{2, 2}, key: CPU}
	y := &fakeTensor{sizes: []int64{2, 2}, key: CPU}
	out, err := k.CallBoxed([]Value{NewTensorValue(x), NewTensorValue(y)})
	require.NoError(t, err)
	require.True(t, called)
	require.Len(t, out, 1)

	result, err := out[0].ToTensor()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2}, result.Sizes())
	assert.Equal(t, CPU, result.BackendKey())
}

func TestFromFunctionArityMismatch(t *testing.T) {
	k := MustFromFunction(func(a, b Tensor) Tensor { return a })

	x := &fakeTensor{sizes: []int64{2}, key: CPU}
	_, err := k.CallBoxed([]Value{NewTensorValue(x)})
	require.Error(t, err)

	var arity *ArityMismatchError
	require.True(t, errors.As(err, &arity))
	assert.Equal(t, 2, arity.Expected)
	assert.Equal(t, 1, arity.Observed)
}

func TestFromFunctionTypeMismatch(t *testing.T) {
	k := MustFromFunction(func(a, b Tensor) Tensor { return a })

	x := &fakeTensor{sizes: []int64{2}, key: CPU}
	_, err := k.CallBoxed([]Value{NewTensorValue(x), NewDoubleValue(3.14)})
	require.Error(t, err)

	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, TagDouble, mismatch.Observed)
	assert.Equal(t, TagTensor, mismatch.Expected)
	assert.Contains(t, err.Error(), "argument 1")
}

func TestFromFunctionScalars(t *testing.T) {
	add := MustFromFunction(func(a, b float64) float64 { return a + b })
	out, err := add.CallBoxed([]Value{NewDoubleValue(3.14), NewDoubleValue(2.86)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	sum, err := out[0].ToDouble()
	require.NoError(t, err)
	assert.InDelta(t, 6.0, sum, 1e-9)

	concat := MustFromFunction(func(a string, n int64, upper bool) string {
		if upper {
			return a
		}
		for ; n > 1; n-- {
			a += a
		}
		return a
	})
	out, err = concat.CallBoxed([]Value{
		NewStringValue("ab"), NewIntValue(2), NewBoolValue(false),
	})
	require.NoError(t, err)
	s, err := out[0].ToString()
	require.NoError(t, err)
	assert.Equal(t, "abab", s)
}

func TestFromFunctionLists(t *testing.T) {
	sum := MustFromFunction(func(xs []int64) int64 {
		var total int64
		for _, x := range xs {
			total += x
		}
		return total
	})
	out, err := sum.CallBoxed([]Value{NewIntListValue([]int64{1, 2, 3})})
	require.NoError(t, err)
	n, err := out[0].ToInt()
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	first := MustFromFunction(func(ts []Tensor) Tensor { return ts[0] })
	ft := &fakeTensor{sizes: []int64{1}, key: CUDA}
	out, err = first.CallBoxed([]Value{NewTensorListValue([]Tensor{ft})})
	require.NoError(t, err)
	got, err := out[0].ToTensor()
	require.NoError(t, err)
	assert.Same(t, ft, got.(*fakeTensor))
}

func TestFromFunctionUnitReturn(t *testing.T) {
	ran := false
	k := MustFromFunction(func(_ Tensor) { ran = true })

	out, err := k.CallBoxed([]Value{NewTensorValue(&fakeTensor{key: CPU})})
	require.NoError(t, err)
	assert.Empty(t, out, "unit return boxes to an empty list")
	assert.True(t, ran)
}

func TestFromFunctionErrorReturns(t *testing.T) {
	boom := errors.New("boom")

	k := MustFromFunction(func(_ Tensor) error { return boom })
	_, err := k.CallBoxed([]Value{NewTensorValue(&fakeTensor{key: CPU})})
	require.ErrorIs(t, err, boom)

	k = MustFromFunction(func(t Tensor) (Tensor, error) { return t, nil })
	out, err := k.CallBoxed([]Value{NewTensorValue(&fakeTensor{key: CPU})})
	require.NoError(t, err)
	require.Len(t, out, 1)

	k = MustFromFunction(func(t Tensor) (Tensor, error) { return nil, boom })
	_, err = k.CallBoxed([]Value{NewTensorValue(&fakeTensor{key: CPU})})
	require.ErrorIs(t, err, boom)
}

func TestFromFunctionRejectsBadSignatures(t *testing.T) {
	// Unsupported types fail at registration time, never at call time.
	_, err := FromFunction(func(x int) {})
	assert.Error(t, err, "int parameters are not boxable")

	_, err = FromFunction(func() float32 { return 0 })
	assert.Error(t, err, "float32 return is not boxable")

	_, err = FromFunction(func(xs ...float64) {})
	assert.Error(t, err, "variadic kernels are rejected")

	_, err = FromFunction(42)
	assert.Error(t, err, "non-function values are rejected")

	_, err = FromFunction(func() (Tensor, Tensor) { return nil, nil })
	assert.Error(t, err, "second return must be error")

	assert.Panics(t, func() { MustFromFunction(func(x int) {}) })
}
