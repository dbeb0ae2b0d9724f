package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dispatch/dispatch"
	"github.com/born-ml/dispatch/tensor"
)

func TestKernelTimesSuccessfulCalls(t *testing.T) {
	t.Cleanup(dispatch.State().Reset)

	d := dispatch.New()
	name := dispatch.OpName("add")
	op := d.RegisterOperator(name)
	op.SetKernel(dispatch.CPU, dispatch.MustFromFunction(
		func(a, b dispatch.Tensor) dispatch.Tensor { return tensor.NewCPU(a.Sizes()...) },
	))

	timings := NewTimings()
	op.SetKernel(dispatch.Profiling, Kernel(d, name, timings))

	dispatch.State().SetProfilingEnabled(true)
	args := []dispatch.Value{
		dispatch.NewTensorValue(tensor.NewCPU(2)),
		dispatch.NewTensorValue(tensor.NewCPU(2)),
	}
	_, err := d.Call(name, args)
	require.NoError(t, err)
	_, err = d.Call(name, args)
	require.NoError(t, err)

	assert.Equal(t, 2, timings.Count("add"))
	assert.GreaterOrEqual(t, timings.Total("add"), timings.Total("missing"))

	timings.Reset()
	assert.Equal(t, 0, timings.Count("add"))
}

func TestKernelSkipsFailedCalls(t *testing.T) {
	t.Cleanup(dispatch.State().Reset)

	d := dispatch.New()
	name := dispatch.OpName("add")
	op := d.RegisterOperator(name)

	boom := errors.New("kernel failure")
	op.SetKernel(dispatch.CPU, dispatch.NewKernel(
		func([]dispatch.Value) ([]dispatch.Value, error) { return nil, boom },
	))

	timings := NewTimings()
	op.SetKernel(dispatch.Profiling, Kernel(d, name, timings))

	dispatch.State().SetProfilingEnabled(true)
	_, err := d.Call(name, []dispatch.Value{dispatch.NewTensorValue(tensor.NewCPU(1))})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, timings.Count("add"), "failed calls are not timed")
}
