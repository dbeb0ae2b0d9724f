package dispatch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// RegistrationCallback observes operator (de)registration. registered is
// true for a new registration, false for a deregistration.
//
// Callbacks run synchronously while the registry lock is held: they must not
// reenter the Dispatcher or they deadlock.
type RegistrationCallback func(name OperatorName, registered bool)

// CallStats accumulates per-operator call counters while profiling is
// enabled on the dispatcher.
type CallStats struct {
	CallCount uint64
	KeyCounts map[Key]uint64
}

// Dispatcher is the process-wide registry mapping operator names to their
// dispatch tables, and the entry point for boxed calls.
//
// Handles returned by RegisterOperator and FindOperator stay valid until the
// operator is deregistered; callers must not race a deregistration against
// an in-flight call.
type Dispatcher struct {
	mu        sync.Mutex
	operators map[OperatorName]*Handle
	callbacks []RegistrationCallback

	profiling atomic.Bool
	statsMu   sync.Mutex
	stats     map[OperatorName]*CallStats
}

// New returns an empty Dispatcher. Most code uses the process-wide
// Default(); New exists so tests can run against an isolated registry.
func New() *Dispatcher {
	return &Dispatcher{
		operators: make(map[OperatorName]*Handle),
		stats:     make(map[OperatorName]*CallStats),
	}
}

var (
	defaultDispatcher *Dispatcher
	defaultOnce       sync.Once
)

// Default returns the process-wide dispatcher, creating it on first use.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		defaultDispatcher = New()
	})
	return defaultDispatcher
}

// RegisterOperator registers name and returns its handle. Registering an
// existing name is idempotent and returns the existing handle unchanged;
// under concurrent registration of one name only a single handle is created.
func (d *Dispatcher) RegisterOperator(name OperatorName) *Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	if handle, ok := d.operators[name]; ok {
		return handle
	}

	handle := newHandle(name.FullName())
	d.operators[name] = handle
	klog.V(2).InfoS("registered operator", "op", name.FullName())
	d.notifyLocked(name, true)
	return handle
}

// FindOperator returns the handle for name, or nil if not registered.
func (d *Dispatcher) FindOperator(name OperatorName) *Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.operators[name]
}

// HasOperator reports whether name is registered.
func (d *Dispatcher) HasOperator(name OperatorName) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.operators[name]
	return ok
}

// DeregisterOperator removes name from the registry. The operator's handle
// becomes invalid. Each registration callback fires exactly once with
// registered=false; deregistering an unknown name is a no-op.
func (d *Dispatcher) DeregisterOperator(name OperatorName) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.operators[name]; !ok {
		return
	}
	delete(d.operators, name)
	klog.V(2).InfoS("deregistered operator", "op", name.FullName())
	d.notifyLocked(name, false)
}

// OperatorNames returns every registered operator name, sorted by full name.
func (d *Dispatcher) OperatorNames() []OperatorName {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]OperatorName, 0, len(d.operators))
	for name := range d.operators {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return names[i].FullName() < names[j].FullName()
	})
	return names
}

// AddRegistrationCallback registers cb to observe every subsequent operator
// registration and deregistration.
func (d *Dispatcher) AddRegistrationCallback(cb RegistrationCallback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks = append(d.callbacks, cb)
}

// notifyLocked runs the callbacks with the registry lock held. A panicking
// callback is logged and swallowed so it can neither stop later callbacks
// nor affect the registration outcome.
func (d *Dispatcher) notifyLocked(name OperatorName, registered bool) {
	for _, cb := range d.callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					klog.ErrorS(nil, "registration callback panicked", "op", name.FullName(), "panic", r)
				}
			}()
			cb(name, registered)
		}()
	}
}

// Call dispatches args to the named operator, deriving the dispatch key set
// from the arguments and the global state.
func (d *Dispatcher) Call(name OperatorName, args []Value) ([]Value, error) {
	handle := d.FindOperator(name)
	if handle == nil {
		return nil, &UnknownOperatorError{Name: name}
	}
	ks := handle.ComputeKeySet(args)
	result, err := handle.Call(ks, args)
	if err != nil {
		return nil, err
	}
	d.recordCall(name, ks.HighestPriorityKey())
	return result, nil
}

// CallWithKeys dispatches args to the named operator with an explicit key
// set. Wrapper kernels use this to redispatch after masking their own key.
func (d *Dispatcher) CallWithKeys(name OperatorName, ks KeySet, args []Value) ([]Value, error) {
	handle := d.FindOperator(name)
	if handle == nil {
		return nil, &UnknownOperatorError{Name: name}
	}
	result, err := handle.Call(ks, args)
	if err != nil {
		return nil, err
	}
	d.recordCall(name, ks.HighestPriorityKey())
	return result, nil
}

// CallByName is Call with a plain string operator name (no overload).
func (d *Dispatcher) CallByName(name string, args []Value) ([]Value, error) {
	return d.Call(OpName(name), args)
}

// EnableProfiling turns call statistics collection on or off.
func (d *Dispatcher) EnableProfiling(enabled bool) {
	d.profiling.Store(enabled)
}

// ProfilingEnabled reports whether call statistics are being collected.
func (d *Dispatcher) ProfilingEnabled() bool {
	return d.profiling.Load()
}

// recordCall bumps the counters for a successful call. Statistics are only
// touched after the kernel returned without error, so a failed call leaves
// them unchanged.
func (d *Dispatcher) recordCall(name OperatorName, key Key) {
	if !d.profiling.Load() {
		return
	}
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	stats, ok := d.stats[name]
	if !ok {
		stats = &CallStats{KeyCounts: make(map[Key]uint64)}
		d.stats[name] = stats
	}
	stats.CallCount++
	stats.KeyCounts[key]++
}

// CallStatistics returns a copy of the accumulated per-operator counters.
func (d *Dispatcher) CallStatistics() map[OperatorName]CallStats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	out := make(map[OperatorName]CallStats, len(d.stats))
	for name, stats := range d.stats {
		keyCounts := make(map[Key]uint64, len(stats.KeyCounts))
		for k, n := range stats.KeyCounts {
			keyCounts[k] = n
		}
		out[name] = CallStats{CallCount: stats.CallCount, KeyCounts: keyCounts}
	}
	return out
}

// ResetCallStatistics clears all accumulated counters.
func (d *Dispatcher) ResetCallStatistics() {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.stats = make(map[OperatorName]*CallStats)
}

// DebugString renders the registry: every operator with its registered keys
// in priority order, and the call statistics when profiling is enabled.
func (d *Dispatcher) DebugString() string {
	d.mu.Lock()
	names := make([]OperatorName, 0, len(d.operators))
	for name := range d.operators {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return names[i].FullName() < names[j].FullName()
	})

	var b strings.Builder
	b.WriteString("Dispatcher {\n")
	fmt.Fprintf(&b, "  Registered operators: %d\n", len(names))
	for _, name := range names {
		fmt.Fprintf(&b, "  %s {\n", name.FullName())
		for _, key := range d.operators[name].RegisteredKeys() {
			fmt.Fprintf(&b, "    %s\n", key)
		}
		b.WriteString("  }\n")
	}
	d.mu.Unlock()

	if d.profiling.Load() {
		b.WriteString("\n  Call Statistics:\n")
		stats := d.CallStatistics()
		statNames := make([]OperatorName, 0, len(stats))
		for name := range stats {
			statNames = append(statNames, name)
		}
		sort.Slice(statNames, func(i, j int) bool {
			return statNames[i].FullName() < statNames[j].FullName()
		})
		for _, name := range statNames {
			stat := stats[name]
			fmt.Fprintf(&b, "    %s: %d calls\n", name.FullName(), stat.CallCount)
			keys := make([]Key, 0, len(stat.KeyCounts))
			for k := range stat.KeyCounts {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool {
				return keys[i].Priority() < keys[j].Priority()
			})
			for _, k := range keys {
				fmt.Fprintf(&b, "      %s: %d times\n", k, stat.KeyCounts[k])
			}
		}
	}

	b.WriteString("}")
	return b.String()
}
