// Package main demonstrates the Born dispatch runtime: operator
// registration, boxed and unboxed kernels, functionality wrappers, and call
// statistics.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/born-ml/dispatch/autodiff"
	"github.com/born-ml/dispatch/backend/cpu"
	"github.com/born-ml/dispatch/backend/cuda"
	"github.com/born-ml/dispatch/dispatch"
	"github.com/born-ml/dispatch/profile"
	"github.com/born-ml/dispatch/tensor"
	"github.com/born-ml/dispatch/trace"
)

const version = "v0.1.0-dev"

// BornDispatchEnv configures the demo, comma-separated: "autograd",
// "tracing", "profiling" enable the matching global flags, e.g.
// BORN_DISPATCH=tracing,profiling.
const BornDispatchEnv = "BORN_DISPATCH"

func applyEnvConfig() {
	config, found := os.LookupEnv(BornDispatchEnv)
	if !found {
		return
	}
	state := dispatch.State()
	for _, flagName := range strings.Split(config, ",") {
		switch strings.TrimSpace(flagName) {
		case "autograd":
			state.SetAutogradEnabled(true)
		case "tracing":
			state.SetTracingEnabled(true)
		case "profiling":
			state.SetProfilingEnabled(true)
		case "":
		default:
			klog.Warningf("%s: unknown flag %q", BornDispatchEnv, flagName)
		}
	}
}

func registerOperators(d *dispatch.Dispatcher, tape *autodiff.Tape, rec *trace.Recorder, timings *profile.Timings) {
	d.AddRegistrationCallback(func(name dispatch.OperatorName, registered bool) {
		klog.V(1).InfoS("registry changed", "op", name.FullName(), "registered", registered)
	})

	cpu.Register(d)
	cuda.Register(d)

	// Functionality wrappers on add: each masks its own key and
	// redispatches, so they stack in priority order.
	addName := dispatch.OpName("add")
	addOp := d.FindOperator(addName)
	addOp.SetKernel(dispatch.Autograd, autodiff.Kernel(d, addName, tape))
	addOp.SetKernel(dispatch.Tracing, trace.Kernel(d, addName, rec))
	addOp.SetKernel(dispatch.Profiling, profile.Kernel(d, addName, timings))

	// Unboxed scalar kernels under CatchAll: selected for scalar-only
	// calls regardless of the (empty) backend key set.
	addScalar := d.RegisterOperator(dispatch.OpName("add_scalar"))
	addScalar.SetKernel(dispatch.CatchAll, dispatch.MustFromFunction(
		func(a, b float64) float64 { return a + b },
	))

	addTensorScalar := d.RegisterOperator(dispatch.OpName("add_tensor_scalar"))
	addTensorScalar.SetKernel(dispatch.CPU, dispatch.MustFromFunction(
		func(t dispatch.Tensor, s float64) dispatch.Tensor {
			klog.V(1).InfoS("tensor+scalar", "tensor", t.DebugString(), "scalar", s)
			return tensor.NewCPU(t.Sizes()...)
		},
	))
}

func runScenarios(d *dispatch.Dispatcher) error {
	fmt.Println("== basic dispatch ==")
	x := tensor.NewCPU(2, 3)
	y := tensor.NewCPU(2, 3)
	if _, err := d.CallByName("add", []dispatch.Value{
		dispatch.NewTensorValue(x), dispatch.NewTensorValue(y),
	}); err != nil {
		return err
	}
	fmt.Printf("add on %s selected %s\n", dispatch.ComputeKeySet([]dispatch.Value{dispatch.NewTensorValue(x)}),
		x.KeySet().HighestPriorityKey())

	gx := tensor.NewCUDA(3, 4)
	gy := tensor.NewCUDA(3, 4)
	if _, err := d.CallByName("add", []dispatch.Value{
		dispatch.NewTensorValue(gx), dispatch.NewTensorValue(gy),
	}); err != nil {
		return err
	}

	fmt.Println("== autograd redispatch ==")
	x.SetRequiresGrad(true)
	result, err := d.CallByName("add", []dispatch.Value{
		dispatch.NewTensorValue(x), dispatch.NewTensorValue(y),
	})
	if err != nil {
		return err
	}
	out, err := result[0].ToTensor()
	if err != nil {
		return err
	}
	fmt.Printf("autograd add -> %s\n", out.DebugString())
	x.SetRequiresGrad(false)

	fmt.Println("== scalar and mixed calls ==")
	sum, err := d.CallByName("add_scalar", []dispatch.Value{
		dispatch.NewDoubleValue(3.14), dispatch.NewDoubleValue(2.86),
	})
	if err != nil {
		return err
	}
	s, err := sum[0].ToDouble()
	if err != nil {
		return err
	}
	fmt.Printf("add_scalar(3.14, 2.86) = %g\n", s)

	if _, err := d.CallByName("add_tensor_scalar", []dispatch.Value{
		dispatch.NewTensorValue(y), dispatch.NewDoubleValue(5),
	}); err != nil {
		return err
	}
	if _, err := d.CallByName("print_info", []dispatch.Value{
		dispatch.NewTensorValue(y),
	}); err != nil {
		return err
	}

	fmt.Println("== error handling ==")
	_, err = d.CallByName("add_tensor_scalar", []dispatch.Value{dispatch.NewTensorValue(y)})
	fmt.Printf("arity error: %v\n", err)
	_, err = d.CallByName("add_tensor_scalar", []dispatch.Value{
		dispatch.NewDoubleValue(1), dispatch.NewTensorValue(y),
	})
	fmt.Printf("type error: %v\n", err)
	_, err = d.CallByName("does_not_exist", nil)
	fmt.Printf("unknown operator: %v\n", err)

	fmt.Println("== functionality key combos ==")
	dispatch.State().SetTracingEnabled(true)
	dispatch.State().SetProfilingEnabled(true)
	if _, err := d.CallByName("add", []dispatch.Value{
		dispatch.NewTensorValue(gx), dispatch.NewTensorValue(gy),
	}); err != nil {
		return err
	}
	fmt.Printf("key set was %s\n", gx.KeySet())
	dispatch.State().SetTracingEnabled(false)
	dispatch.State().SetProfilingEnabled(false)

	fmt.Println("== concurrent callers ==")
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			a := tensor.NewCPU(4, 4)
			b := tensor.NewCPU(4, 4)
			_, err := d.CallByName("mul", []dispatch.Value{
				dispatch.NewTensorValue(a), dispatch.NewTensorValue(b),
			})
			return err
		})
	}
	return g.Wait()
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("Born Dispatch %s\n", version)
		return
	}

	applyEnvConfig()

	d := dispatch.Default()
	d.EnableProfiling(true)

	tape := autodiff.NewTape()
	rec := trace.NewRecorder()
	timings := profile.NewTimings()
	registerOperators(d, tape, rec, timings)

	if err := runScenarios(d); err != nil {
		klog.ErrorS(err, "demo failed")
		os.Exit(1)
	}

	fmt.Println("== recorded state ==")
	fmt.Printf("tape entries: %d, trace events: %d, timed add calls: %d\n",
		len(tape.Entries()), len(rec.Events()), timings.Count("add"))

	fmt.Println(d.DebugString())
}
