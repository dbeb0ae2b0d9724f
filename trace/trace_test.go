package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dispatch/dispatch"
	"github.com/born-ml/dispatch/tensor"
)

func TestKernelRecordsAndRedispatches(t *testing.T) {
	t.Cleanup(dispatch.State().Reset)

	d := dispatch.New()
	name := dispatch.OpName("mul")
	op := d.RegisterOperator(name)

	backendCalls := 0
	op.SetKernel(dispatch.CUDA, dispatch.MustFromFunction(
		func(a, b dispatch.Tensor) dispatch.Tensor {
			backendCalls++
			return tensor.NewCUDA(a.Sizes()...)
		},
	))

	rec := NewRecorder()
	op.SetKernel(dispatch.Tracing, Kernel(d, name, rec))

	dispatch.State().SetTracingEnabled(true)
	x := tensor.NewCUDA(3)
	_, err := d.Call(name, []dispatch.Value{
		dispatch.NewTensorValue(x), dispatch.NewTensorValue(tensor.NewCUDA(3)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, backendCalls)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "mul", events[0].Op)
	assert.False(t, events[0].Keys.Has(dispatch.Tracing),
		"the wrapper redispatches with its own key masked")
	assert.True(t, events[0].Keys.Has(dispatch.CUDA))
	require.Len(t, events[0].Args, 2)
	assert.Contains(t, events[0].Args[0], "backend=CUDA")

	rec.Clear()
	assert.Empty(t, rec.Events())
}
