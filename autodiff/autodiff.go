// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides the Autograd wrapper kernel using the decorator
// pattern: the wrapper records the operation on a gradient tape, masks its
// own dispatch key, and redispatches the call so the next-priority kernel
// runs underneath it.
//
// Usage:
//
//	d := dispatch.Default()
//	op := d.RegisterOperator(dispatch.OpName("add"))
//	tape := autodiff.NewTape()
//	op.SetKernel(dispatch.Autograd, autodiff.Kernel(d, dispatch.OpName("add"), tape))
package autodiff

import (
	"sync"

	"github.com/born-ml/dispatch/dispatch"
)

// Entry is one recorded operation on the tape.
type Entry struct {
	Op      string   // Full operator name.
	Inputs  []string // Debug strings of the tensor inputs.
	Outputs []string // Debug strings of the tensor outputs.
}

// Tape records operations during the forward pass. It is safe for
// concurrent use.
type Tape struct {
	mu        sync.Mutex
	entries   []Entry
	recording bool
}

// NewTape returns a recording tape.
func NewTape() *Tape {
	return &Tape{recording: true}
}

// SetRecording starts or stops recording. While stopped, wrapper kernels
// still redispatch but record nothing.
func (t *Tape) SetRecording(recording bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recording = recording
}

// IsRecording reports whether the tape is recording.
func (t *Tape) IsRecording() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recording
}

// Record appends an entry if the tape is recording.
func (t *Tape) Record(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recording {
		t.entries = append(t.entries, e)
	}
}

// Entries returns a copy of the recorded entries.
func (t *Tape) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Clear drops all recorded entries, e.g. between training iterations.
func (t *Tape) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

// Kernel returns the Autograd wrapper kernel for op on d. The kernel removes
// Autograd from the key set the call was dispatched with, redispatches, and
// records the operation (inputs and outputs) on tape once the redispatched
// call succeeds; a failed call leaves the tape unchanged. Reducing the passed-down set (never a
// set recomputed from the arguments and global state, which would re-add the
// keys an outer wrapper already peeled off) is what keeps the recursion
// bounded: every redispatch uses a strictly smaller set.
func Kernel(d *dispatch.Dispatcher, op dispatch.OperatorName, tape *Tape) dispatch.Kernel {
	return dispatch.NewKeyedKernel(func(ks dispatch.KeySet, args []dispatch.Value) ([]dispatch.Value, error) {
		entry := Entry{Op: op.FullName(), Inputs: tensorDebugStrings(args)}

		ks.Remove(dispatch.Autograd)

		result, err := d.CallWithKeys(op, ks, args)
		if err != nil {
			return nil, err
		}

		entry.Outputs = tensorDebugStrings(result)
		tape.Record(entry)
		return result, nil
	})
}

func tensorDebugStrings(values []dispatch.Value) []string {
	var out []string
	for _, v := range values {
		if v.IsTensor() {
			t, _ := v.ToTensor()
			out = append(out, t.DebugString())
		}
	}
	return out
}
