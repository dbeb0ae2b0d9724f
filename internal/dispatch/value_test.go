package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTensor is a minimal Tensor for tests inside this package; the real
// implementation lives in internal/tensor, which this package cannot import.
type fakeTensor struct {
	sizes []int64
	key   Key
	grad  bool
}

func (f *fakeTensor) Sizes() []int64     { return f.sizes }
func (f *fakeTensor) BackendKey() Key    { return f.key }
func (f *fakeTensor) RequiresGrad() bool { return f.grad }

func (f *fakeTensor) KeySet() KeySet {
	ks := NewKeySet(f.key)
	if f.grad {
		ks.Add(Autograd)
	}
	ks.UnionInPlace(State().FunctionalityKeys())
	return ks
}

func (f *fakeTensor) DebugString() string {
	return fmt.Sprintf("fake(%v, %s)", f.sizes, f.key)
}

func TestValueRoundTrips(t *testing.T) {
	ft := &fakeTensor{sizes: []int64{2, 3}, key: CPU}

	v := NewTensorValue(ft)
	require.Equal(t, TagTensor, v.Tag())
	got, err := v.ToTensor()
	require.NoError(t, err)
	assert.Same(t, ft, got.(*fakeTensor))

	d, err := NewDoubleValue(3.14).ToDouble()
	require.NoError(t, err)
	assert.Equal(t, 3.14, d)

	i, err := NewIntValue(-42).ToInt()
	require.NoError(t, err)
	assert.Equal(t, int64(-42), i)

	b, err := NewBoolValue(true).ToBool()
	require.NoError(t, err)
	assert.True(t, b)

	s, err := NewStringValue("hello").ToString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	il, err := NewIntListValue([]int64{1, 2, 3}).ToIntList()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, il)

	dl, err := NewDoubleListValue([]float64{1.5, 2.5}).ToDoubleList()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, dl)

	tl, err := NewTensorListValue([]Tensor{ft, ft}).ToTensorList()
	require.NoError(t, err)
	require.Len(t, tl, 2)
	assert.Same(t, ft, tl[0].(*fakeTensor))

	assert.True(t, None().IsNone())
}

func TestValueWrongAccessor(t *testing.T) {
	v := NewDoubleValue(1.5)

	_, err := v.ToTensor()
	require.Error(t, err)
	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, TagDouble, mismatch.Observed)
	assert.Equal(t, TagTensor, mismatch.Expected)
	assert.Contains(t, err.Error(), "Double")
	assert.Contains(t, err.Error(), "Tensor")

	// Every accessor but ToDouble fails on a Double.
	_, err = v.ToInt()
	assert.Error(t, err)
	_, err = v.ToBool()
	assert.Error(t, err)
	_, err = v.ToString()
	assert.Error(t, err)
	_, err = v.ToIntList()
	assert.Error(t, err)
	_, err = v.ToDoubleList()
	assert.Error(t, err)
	_, err = v.ToTensorList()
	assert.Error(t, err)

	// None is its own variant: no accessor succeeds.
	_, err = None().ToDouble()
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, TagNone, mismatch.Observed)
}

func TestValueCopySharesTensor(t *testing.T) {
	ft := &fakeTensor{sizes: []int64{4}, key: CUDA}
	a := NewTensorValue(ft)
	b := a // copy

	ta, err := a.ToTensor()
	require.NoError(t, err)
	tb, err := b.ToTensor()
	require.NoError(t, err)
	assert.Same(t, ta.(*fakeTensor), tb.(*fakeTensor), "copies alias one tensor")
}

func TestValueClone(t *testing.T) {
	backing := []int64{1, 2, 3}
	v := NewIntListValue(backing)
	c := v.Clone()

	backing[0] = 99
	cl, err := c.ToIntList()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, cl, "clone owns its backing array")

	vl, err := v.ToIntList()
	require.NoError(t, err)
	assert.Equal(t, []int64{99, 2, 3}, vl, "original still aliases the caller's array")

	// Tensors stay shared across clones.
	ft := &fakeTensor{sizes: []int64{1}, key: CPU}
	tc := NewTensorListValue([]Tensor{ft}).Clone()
	list, err := tc.ToTensorList()
	require.NoError(t, err)
	assert.Same(t, ft, list[0].(*fakeTensor))
}

func TestValueMove(t *testing.T) {
	src := NewStringValue("payload")
	dst := src.Move()

	assert.True(t, src.IsNone(), "move leaves the source in the None state")
	s, err := dst.ToString()
	require.NoError(t, err)
	assert.Equal(t, "payload", s)
}

func TestValueDebugString(t *testing.T) {
	assert.Equal(t, "None", None().DebugString())
	assert.Equal(t, "Double(2.5)", NewDoubleValue(2.5).DebugString())
	assert.Equal(t, "Int(7)", NewIntValue(7).DebugString())
	assert.Equal(t, "Bool(true)", NewBoolValue(true).DebugString())
	assert.Equal(t, `String("x")`, NewStringValue("x").DebugString())
	assert.Equal(t, "IntList([1 2])", NewIntListValue([]int64{1, 2}).DebugString())
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "None", TagNone.String())
	assert.Equal(t, "TensorList", TagTensorList.String())
	assert.Equal(t, "Unknown", Tag(200).String())
}
