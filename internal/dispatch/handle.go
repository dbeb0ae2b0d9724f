package dispatch

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// OperatorName identifies an operator by base name and optional overload,
// e.g. {Base: "add", Overload: "scalar"} prints as "add.scalar". Equality is
// structural over both fields, so the struct is usable as a map key.
type OperatorName struct {
	Base     string
	Overload string
}

// OpName returns the OperatorName for a base name with no overload.
func OpName(base string) OperatorName {
	return OperatorName{Base: base}
}

// FullName returns "base" or "base.overload".
func (n OperatorName) FullName() string {
	if n.Overload == "" {
		return n.Base
	}
	return n.Base + "." + n.Overload
}

// Handle is the per-operator dispatch table mapping dispatch keys to
// kernels.
//
// The table is not locked: kernel registration must finish before concurrent
// call traffic starts (kernels are installed at startup). Replacing kernels
// while calls are in flight is a data race.
type Handle struct {
	name  string
	table map[Key]Kernel
}

func newHandle(name string) *Handle {
	return &Handle{
		name:  name,
		table: make(map[Key]Kernel),
	}
}

// Name returns the full operator name.
func (h *Handle) Name() string {
	return h.name
}

// SetKernel binds kernel to key, replacing any previous binding.
func (h *Handle) SetKernel(key Key, kernel Kernel) {
	h.table[key] = kernel
}

// RemoveKernel removes the kernel bound to key, if any.
func (h *Handle) RemoveKernel(key Key) {
	delete(h.table, key)
}

// HasKernel reports whether a kernel is bound to key.
func (h *Handle) HasKernel(key Key) bool {
	_, ok := h.table[key]
	return ok
}

// findKernel walks the key set in priority order and returns the first
// kernel with a matching key, falling back to CatchAll. This is the heart of
// the dispatcher: functionality wrappers outrank backends, backends outrank
// the fallback.
func (h *Handle) findKernel(ks KeySet) (Kernel, bool) {
	for _, key := range ks.Keys() {
		if kernel, ok := h.table[key]; ok {
			return kernel, true
		}
	}
	if kernel, ok := h.table[CatchAll]; ok {
		return kernel, true
	}
	return Kernel{}, false
}

// Call dispatches args to the highest-priority kernel matching ks. The
// kernel receives ks, so a wrapper can mask its own key off the set it was
// actually selected from and redispatch with a strictly reduced set.
func (h *Handle) Call(ks KeySet, args []Value) ([]Value, error) {
	kernel, ok := h.findKernel(ks)
	if !ok {
		return nil, &NoKernelError{Op: h.name, KeySet: ks}
	}
	result, err := kernel.CallBoxedWithKeys(ks, args)
	if err != nil {
		return nil, errors.Wrapf(err, "operator %q", h.name)
	}
	return result, nil
}

// CallAuto derives the dispatch key set from args and dispatches.
func (h *Handle) CallAuto(args []Value) ([]Value, error) {
	return h.Call(h.ComputeKeySet(args), args)
}

// ComputeKeySet derives the dispatch key set for a boxed argument list.
func (h *Handle) ComputeKeySet(args []Value) KeySet {
	return ComputeKeySet(args)
}

// ComputeKeySet collects every tensor in args (Tensor and TensorList
// variants) and unions their key sets. Scalar arguments contribute nothing;
// with no tensors at all the globally enabled functionality keys are used.
func ComputeKeySet(args []Value) KeySet {
	var tensors []Tensor
	for _, arg := range args {
		switch {
		case arg.IsTensor():
			t, _ := arg.ToTensor()
			tensors = append(tensors, t)
		case arg.IsTensorList():
			list, _ := arg.ToTensorList()
			tensors = append(tensors, list...)
		}
	}
	return ComputeKeySetForTensors(tensors)
}

// RegisteredKeys returns the keys with bound kernels, priority-ascending.
func (h *Handle) RegisteredKeys() []Key {
	keys := make([]Key, 0, len(h.table))
	for key := range h.table {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Priority() < keys[j].Priority()
	})
	return keys
}

// DebugString renders the dispatch table, e.g.
// "OperatorHandle(add) { Autograd: registered; CPU: registered }".
func (h *Handle) DebugString() string {
	var b strings.Builder
	b.WriteString("OperatorHandle(")
	b.WriteString(h.name)
	b.WriteString(") {")
	for i, key := range h.RegisteredKeys() {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte(' ')
		b.WriteString(key.String())
		b.WriteString(": registered")
	}
	b.WriteString(" }")
	return b.String()
}
