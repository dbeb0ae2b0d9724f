// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package trace provides the Tracing wrapper kernel: it appends the
// operation to a trace recorder, masks the Tracing key, and redispatches.
// The recorded event stream is what a JIT would compile.
package trace

import (
	"sync"

	"github.com/born-ml/dispatch/dispatch"
)

// Event is one traced operator invocation.
type Event struct {
	Op   string          // Full operator name.
	Keys dispatch.KeySet // Key set the call redispatched with.
	Args []string        // Debug strings of the boxed arguments.
}

// Recorder accumulates trace events. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Events returns a copy of the recorded events in call order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Clear drops all recorded events.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Kernel returns the Tracing wrapper kernel for op on d. The wrapper records
// the event, removes Tracing from the key set the call was dispatched with,
// and redispatches with the strictly reduced set. The passed-down set is
// reduced in place rather than recomputed from the arguments, so keys an
// outer wrapper already masked stay masked.
func Kernel(d *dispatch.Dispatcher, op dispatch.OperatorName, rec *Recorder) dispatch.Kernel {
	return dispatch.NewKeyedKernel(func(ks dispatch.KeySet, args []dispatch.Value) ([]dispatch.Value, error) {
		ks.Remove(dispatch.Tracing)

		argDebug := make([]string, len(args))
		for i, a := range args {
			argDebug[i] = a.DebugString()
		}
		rec.record(Event{Op: op.FullName(), Keys: ks, Args: argDebug})

		return d.CallWithKeys(op, ks, args)
	})
}
