package dispatch

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrInvalidKernel is returned when a default-constructed (uninitialized)
	// kernel is invoked.
	ErrInvalidKernel = errors.New("attempting to call invalid kernel")
)

// UnknownOperatorError reports a call to an operator the dispatcher has no
// handle for.
type UnknownOperatorError struct {
	Name OperatorName
}

// Error implements the error interface.
func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("operator %q is not registered", e.Name.FullName())
}

// NoKernelError reports that an operator exists but no registered kernel
// matches the dispatch key set, including the CatchAll fallback.
type NoKernelError struct {
	Op     string // Full operator name.
	KeySet KeySet // The key set that failed to match.
}

// Error implements the error interface.
func (e *NoKernelError) Error() string {
	return fmt.Sprintf("no kernel found for operator %q with dispatch key set %s", e.Op, e.KeySet)
}

// ArityMismatchError reports a boxed call whose argument count differs from
// the native arity of an unboxed kernel.
type ArityMismatchError struct {
	Observed int
	Expected int
}

// Error implements the error interface.
func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("arity mismatch: expected %d arguments, got %d", e.Expected, e.Observed)
}

// TypeMismatchError reports a Value accessor or unboxing step that observed
// the wrong variant.
type TypeMismatchError struct {
	Observed Tag
	Expected Tag
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: value holds %s, want %s", e.Observed, e.Expected)
}
