// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package profile provides the Profiling wrapper kernel: it times the inner
// call and feeds the duration to a Timings collector.
package profile

import (
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/born-ml/dispatch/dispatch"
)

// Timings collects per-operator wall-clock durations. Safe for concurrent
// use.
type Timings struct {
	mu      sync.Mutex
	samples map[string][]time.Duration
}

// NewTimings returns an empty collector.
func NewTimings() *Timings {
	return &Timings{samples: make(map[string][]time.Duration)}
}

func (t *Timings) record(op string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[op] = append(t.samples[op], d)
}

// Count returns the number of timed calls for op.
func (t *Timings) Count(op string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.samples[op])
}

// Total returns the summed duration of all timed calls for op.
func (t *Timings) Total(op string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, d := range t.samples[op] {
		total += d
	}
	return total
}

// Reset drops all samples.
func (t *Timings) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = make(map[string][]time.Duration)
}

// Kernel returns the Profiling wrapper kernel for op on d. The wrapper
// removes Profiling from the key set the call was dispatched with, times the
// redispatched call, and records the duration only when the inner call
// succeeds. Reducing the passed-down set keeps keys an outer wrapper already
// masked from being re-selected.
func Kernel(d *dispatch.Dispatcher, op dispatch.OperatorName, timings *Timings) dispatch.Kernel {
	return dispatch.NewKeyedKernel(func(ks dispatch.KeySet, args []dispatch.Value) ([]dispatch.Value, error) {
		ks.Remove(dispatch.Profiling)

		start := time.Now()
		result, err := d.CallWithKeys(op, ks, args)
		if err != nil {
			return nil, err
		}
		elapsed := time.Since(start)
		timings.record(op.FullName(), elapsed)
		klog.V(1).InfoS("profiled operator", "op", op.FullName(), "duration", elapsed)
		return result, nil
	})
}
