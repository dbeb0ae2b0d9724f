package dispatch

import (
	"reflect"

	"github.com/pkg/errors"
)

// BoxedFunc is the canonical kernel form: a callable over boxed values.
type BoxedFunc func(args []Value) ([]Value, error)

// KeyedBoxedFunc is a boxed kernel that also receives the dispatch key set
// the call was dispatched with. Wrapper kernels need it: removing their own
// key from this already-reduced set (instead of recomputing a fresh set from
// the arguments and global state) is what guarantees every redispatch uses a
// strictly smaller set and the recursion terminates.
type KeyedBoxedFunc func(ks KeySet, args []Value) ([]Value, error)

// Kernel wraps a boxed kernel function. The zero Kernel is invalid and fails
// with ErrInvalidKernel when invoked.
type Kernel struct {
	boxed KeyedBoxedFunc
}

// NewKernel wraps an already-boxed function that does not inspect the
// dispatched key set (terminal backend kernels).
func NewKernel(fn BoxedFunc) Kernel {
	return Kernel{boxed: func(_ KeySet, args []Value) ([]Value, error) {
		return fn(args)
	}}
}

// NewKeyedKernel wraps a boxed function that receives the dispatched key
// set. This is the form wrapper kernels use to mask their own key before
// re-entering the dispatcher.
func NewKeyedKernel(fn KeyedBoxedFunc) Kernel {
	return Kernel{boxed: fn}
}

// IsValid reports whether the kernel holds a callable function.
func (k Kernel) IsValid() bool {
	return k.boxed != nil
}

// CallBoxed invokes the kernel with boxed arguments and an empty key set.
// Dispatch goes through CallBoxedWithKeys; this entry point is for direct
// invocation of kernels that ignore the set.
func (k Kernel) CallBoxed(args []Value) ([]Value, error) {
	return k.CallBoxedWithKeys(KeySet{}, args)
}

// CallBoxedWithKeys invokes the kernel with boxed arguments and the key set
// the call was dispatched with.
func (k Kernel) CallBoxedWithKeys(ks KeySet, args []Value) ([]Value, error) {
	if !k.IsValid() {
		return nil, ErrInvalidKernel
	}
	return k.boxed(ks, args)
}

var (
	tensorType     = reflect.TypeOf((*Tensor)(nil)).Elem()
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
	intListType    = reflect.TypeOf([]int64(nil))
	doubleListType = reflect.TypeOf([]float64(nil))
	tensorListType = reflect.TypeOf([]Tensor(nil))
)

// extractor pulls one natively typed argument out of a boxed Value.
type extractor func(Value) (reflect.Value, error)

// extractorFor builds the extraction step for one parameter type, or returns
// an error for types the boxed calling convention cannot represent.
func extractorFor(t reflect.Type) (extractor, error) {
	switch {
	case t == tensorType:
		return func(v Value) (reflect.Value, error) {
			tensor, err := v.ToTensor()
			if err != nil {
				return reflect.Value{}, err
			}
			if tensor == nil {
				return reflect.Zero(tensorType), nil
			}
			return reflect.ValueOf(tensor), nil
		}, nil
	case t == intListType:
		return func(v Value) (reflect.Value, error) {
			list, err := v.ToIntList()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(list), nil
		}, nil
	case t == doubleListType:
		return func(v Value) (reflect.Value, error) {
			list, err := v.ToDoubleList()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(list), nil
		}, nil
	case t == tensorListType:
		return func(v Value) (reflect.Value, error) {
			list, err := v.ToTensorList()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(list), nil
		}, nil
	case t.Kind() == reflect.Float64:
		return func(v Value) (reflect.Value, error) {
			d, err := v.ToDouble()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(d).Convert(t), nil
		}, nil
	case t.Kind() == reflect.Int64:
		return func(v Value) (reflect.Value, error) {
			i, err := v.ToInt()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(i).Convert(t), nil
		}, nil
	case t.Kind() == reflect.Bool:
		return func(v Value) (reflect.Value, error) {
			b, err := v.ToBool()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(t), nil
		}, nil
	case t.Kind() == reflect.String:
		return func(v Value) (reflect.Value, error) {
			s, err := v.ToString()
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(s).Convert(t), nil
		}, nil
	default:
		return nil, errors.Errorf("unsupported parameter type %s", t)
	}
}

// boxerFor builds the step that boxes a native return value, or returns an
// error for unsupported return types.
func boxerFor(t reflect.Type) (func(reflect.Value) Value, error) {
	switch {
	case t == tensorType:
		return func(v reflect.Value) Value {
			tensor, _ := v.Interface().(Tensor)
			return NewTensorValue(tensor)
		}, nil
	case t == intListType:
		return func(v reflect.Value) Value {
			return NewIntListValue(v.Interface().([]int64))
		}, nil
	case t == doubleListType:
		return func(v reflect.Value) Value {
			return NewDoubleListValue(v.Interface().([]float64))
		}, nil
	case t == tensorListType:
		return func(v reflect.Value) Value {
			return NewTensorListValue(v.Interface().([]Tensor))
		}, nil
	case t.Kind() == reflect.Float64:
		return func(v reflect.Value) Value {
			return NewDoubleValue(v.Float())
		}, nil
	case t.Kind() == reflect.Int64:
		return func(v reflect.Value) Value {
			return NewIntValue(v.Int())
		}, nil
	case t.Kind() == reflect.Bool:
		return func(v reflect.Value) Value {
			return NewBoolValue(v.Bool())
		}, nil
	case t.Kind() == reflect.String:
		return func(v reflect.Value) Value {
			return NewStringValue(v.String())
		}, nil
	default:
		return nil, errors.Errorf("unsupported return type %s", t)
	}
}

// FromFunction adapts a natively typed function to the boxed calling
// convention. The function's signature is inspected once, at registration
// time; unsupported parameter or return types fail here, never at call time.
//
// Supported parameter types: Tensor, float64, int64, bool, string, []int64,
// []float64, []Tensor. The return may be empty, a single supported type, an
// error, or a (value, error) pair. A niladic return boxes to an empty value
// list; a single value boxes to a one-element list.
//
// The produced boxed kernel validates the argument count against the native
// arity (ArityMismatchError) and each positional argument's variant
// (TypeMismatchError) before invoking the native function, which it captures
// by value.
func FromFunction(fn any) (Kernel, error) {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return Kernel{}, errors.Errorf("kernel must be a function, got %s", fnType)
	}
	if fnType.IsVariadic() {
		return Kernel{}, errors.New("variadic kernels are not supported")
	}

	arity := fnType.NumIn()
	extractors := make([]extractor, arity)
	for i := 0; i < arity; i++ {
		ex, err := extractorFor(fnType.In(i))
		if err != nil {
			return Kernel{}, errors.Wrapf(err, "parameter %d of %s", i, fnType)
		}
		extractors[i] = ex
	}

	var boxResult func(reflect.Value) Value
	returnsError := false
	switch fnType.NumOut() {
	case 0:
		// Unit return: boxed form yields an empty list.
	case 1:
		if fnType.Out(0) == errorType {
			returnsError = true
			break
		}
		boxer, err := boxerFor(fnType.Out(0))
		if err != nil {
			return Kernel{}, errors.Wrapf(err, "return value of %s", fnType)
		}
		boxResult = boxer
	case 2:
		if fnType.Out(1) != errorType {
			return Kernel{}, errors.Errorf("second return of %s must be error, got %s", fnType, fnType.Out(1))
		}
		returnsError = true
		boxer, err := boxerFor(fnType.Out(0))
		if err != nil {
			return Kernel{}, errors.Wrapf(err, "return value of %s", fnType)
		}
		boxResult = boxer
	default:
		return Kernel{}, errors.Errorf("kernel %s returns %d values, at most (value, error) is supported", fnType, fnType.NumOut())
	}

	boxed := func(args []Value) ([]Value, error) {
		if len(args) != arity {
			return nil, &ArityMismatchError{Observed: len(args), Expected: arity}
		}
		in := make([]reflect.Value, arity)
		for i, ex := range extractors {
			arg, err := ex(args[i])
			if err != nil {
				return nil, errors.Wrapf(err, "argument %d", i)
			}
			in[i] = arg
		}

		out := fnVal.Call(in)
		if returnsError {
			if errVal := out[len(out)-1]; !errVal.IsNil() {
				return nil, errVal.Interface().(error)
			}
			out = out[:len(out)-1]
		}
		if boxResult == nil || len(out) == 0 {
			return nil, nil
		}
		return []Value{boxResult(out[0])}, nil
	}
	return NewKernel(boxed), nil
}

// MustFromFunction is FromFunction that panics on a malformed signature.
// Kernel registration happens at startup, so a bad signature is a
// programming error.
func MustFromFunction(fn any) Kernel {
	k, err := FromFunction(fn)
	if err != nil {
		panic(err)
	}
	return k
}
