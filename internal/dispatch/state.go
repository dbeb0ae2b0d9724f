package dispatch

import "sync/atomic"

// GlobalState holds the process-wide feature flags consulted on every
// dispatch. Writes are allowed at any time; the flags are atomics, so
// concurrent readers see each write eventually without locking the hot path.
// Flipping a flag only changes which wrappers interpose, never correctness.
type GlobalState struct {
	autogradEnabled  atomic.Bool
	tracingEnabled   atomic.Bool
	profilingEnabled atomic.Bool
}

// NewState returns a fresh state with all flags disabled. Useful for tests
// that inject their own state; production code uses the process-wide State().
func NewState() *GlobalState {
	return &GlobalState{}
}

var globalState GlobalState

// State returns the process-wide dispatch state.
func State() *GlobalState {
	return &globalState
}

// SetAutogradEnabled globally enables or disables the Autograd key.
func (s *GlobalState) SetAutogradEnabled(enabled bool) {
	s.autogradEnabled.Store(enabled)
}

// AutogradEnabled reports whether autograd is globally enabled.
func (s *GlobalState) AutogradEnabled() bool {
	return s.autogradEnabled.Load()
}

// SetTracingEnabled globally enables or disables the Tracing key.
func (s *GlobalState) SetTracingEnabled(enabled bool) {
	s.tracingEnabled.Store(enabled)
}

// TracingEnabled reports whether tracing is globally enabled.
func (s *GlobalState) TracingEnabled() bool {
	return s.tracingEnabled.Load()
}

// SetProfilingEnabled globally enables or disables the Profiling key.
func (s *GlobalState) SetProfilingEnabled(enabled bool) {
	s.profilingEnabled.Store(enabled)
}

// ProfilingEnabled reports whether profiling is globally enabled.
func (s *GlobalState) ProfilingEnabled() bool {
	return s.profilingEnabled.Load()
}

// FunctionalityKeys returns the set of functionality keys currently enabled.
func (s *GlobalState) FunctionalityKeys() KeySet {
	var ks KeySet
	if s.autogradEnabled.Load() {
		ks.Add(Autograd)
	}
	if s.tracingEnabled.Load() {
		ks.Add(Tracing)
	}
	if s.profilingEnabled.Load() {
		ks.Add(Profiling)
	}
	return ks
}

// Reset disables every flag. Intended for tests.
func (s *GlobalState) Reset() {
	s.autogradEnabled.Store(false)
	s.tracingEnabled.Store(false)
	s.profilingEnabled.Store(false)
}
