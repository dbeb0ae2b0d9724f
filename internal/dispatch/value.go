package dispatch

import (
	"fmt"
	"strings"
)

// Tag identifies the active variant of a Value.
type Tag uint8

// Value variants.
const (
	TagNone Tag = iota
	TagTensor
	TagDouble
	TagInt
	TagBool
	TagString
	TagIntList
	TagDoubleList
	TagTensorList
)

// String returns the variant name.
func (t Tag) String() string {
	switch t {
	case TagNone:
		return "None"
	case TagTensor:
		return "Tensor"
	case TagDouble:
		return "Double"
	case TagInt:
		return "Int"
	case TagBool:
		return "Bool"
	case TagString:
		return "String"
	case TagIntList:
		return "IntList"
	case TagDoubleList:
		return "DoubleList"
	case TagTensorList:
		return "TensorList"
	default:
		return "Unknown"
	}
}

// Value is the boxed argument and return type of the uniform calling
// convention. Exactly one variant is active at a time; accessing any other
// variant fails with a TypeMismatchError.
//
// Copying a Value copies list payloads by reference to the same backing
// array and shares tensors: two Values may alias one tensor, which stays
// alive until the last reference is dropped (the garbage collector provides
// the shared-ownership semantics). Use Move to transfer a payload and leave
// the source in the None state.
type Value struct {
	tag        Tag
	tensor     Tensor
	double     float64
	integer    int64
	boolean    bool
	str        string
	intList    []int64
	doubleList []float64
	tensorList []Tensor
}

// None returns the None value.
func None() Value {
	return Value{}
}

// NewTensorValue boxes a tensor. The Value shares the tensor with the caller.
func NewTensorValue(t Tensor) Value {
	return Value{tag: TagTensor, tensor: t}
}

// NewDoubleValue boxes a float64.
func NewDoubleValue(v float64) Value {
	return Value{tag: TagDouble, double: v}
}

// NewIntValue boxes an int64.
func NewIntValue(v int64) Value {
	return Value{tag: TagInt, integer: v}
}

// NewBoolValue boxes a bool.
func NewBoolValue(v bool) Value {
	return Value{tag: TagBool, boolean: v}
}

// NewStringValue boxes a string. String literals box to this variant.
func NewStringValue(v string) Value {
	return Value{tag: TagString, str: v}
}

// NewIntListValue boxes an int64 slice. The Value keeps the given backing
// array; callers must not mutate it while a call using the Value is in
// flight.
func NewIntListValue(v []int64) Value {
	return Value{tag: TagIntList, intList: v}
}

// NewDoubleListValue boxes a float64 slice. Same aliasing contract as
// NewIntListValue.
func NewDoubleListValue(v []float64) Value {
	return Value{tag: TagDoubleList, doubleList: v}
}

// NewTensorListValue boxes a tensor slice. The Value shares the tensors.
func NewTensorListValue(v []Tensor) Value {
	return Value{tag: TagTensorList, tensorList: v}
}

// Tag returns the active variant.
func (v Value) Tag() Tag {
	return v.tag
}

// IsNone reports whether the None variant is active.
func (v Value) IsNone() bool { return v.tag == TagNone }

// IsTensor reports whether the Tensor variant is active.
func (v Value) IsTensor() bool { return v.tag == TagTensor }

// IsDouble reports whether the Double variant is active.
func (v Value) IsDouble() bool { return v.tag == TagDouble }

// IsInt reports whether the Int variant is active.
func (v Value) IsInt() bool { return v.tag == TagInt }

// IsBool reports whether the Bool variant is active.
func (v Value) IsBool() bool { return v.tag == TagBool }

// IsString reports whether the String variant is active.
func (v Value) IsString() bool { return v.tag == TagString }

// IsIntList reports whether the IntList variant is active.
func (v Value) IsIntList() bool { return v.tag == TagIntList }

// IsDoubleList reports whether the DoubleList variant is active.
func (v Value) IsDoubleList() bool { return v.tag == TagDoubleList }

// IsTensorList reports whether the TensorList variant is active.
func (v Value) IsTensorList() bool { return v.tag == TagTensorList }

func (v Value) mismatch(want Tag) error {
	return &TypeMismatchError{Observed: v.tag, Expected: want}
}

// ToTensor returns the boxed tensor.
func (v Value) ToTensor() (Tensor, error) {
	if v.tag != TagTensor {
		return nil, v.mismatch(TagTensor)
	}
	return v.tensor, nil
}

// ToDouble returns the boxed float64.
func (v Value) ToDouble() (float64, error) {
	if v.tag != TagDouble {
		return 0, v.mismatch(TagDouble)
	}
	return v.double, nil
}

// ToInt returns the boxed int64.
func (v Value) ToInt() (int64, error) {
	if v.tag != TagInt {
		return 0, v.mismatch(TagInt)
	}
	return v.integer, nil
}

// ToBool returns the boxed bool.
func (v Value) ToBool() (bool, error) {
	if v.tag != TagBool {
		return false, v.mismatch(TagBool)
	}
	return v.boolean, nil
}

// ToString returns the boxed string.
func (v Value) ToString() (string, error) {
	if v.tag != TagString {
		return "", v.mismatch(TagString)
	}
	return v.str, nil
}

// ToIntList returns the boxed int64 slice. The slice is borrowed, not
// copied; it stays stable for the duration of a kernel call.
func (v Value) ToIntList() ([]int64, error) {
	if v.tag != TagIntList {
		return nil, v.mismatch(TagIntList)
	}
	return v.intList, nil
}

// ToDoubleList returns the boxed float64 slice. Same borrowing contract as
// ToIntList.
func (v Value) ToDoubleList() ([]float64, error) {
	if v.tag != TagDoubleList {
		return nil, v.mismatch(TagDoubleList)
	}
	return v.doubleList, nil
}

// ToTensorList returns the boxed tensor slice.
func (v Value) ToTensorList() ([]Tensor, error) {
	if v.tag != TagTensorList {
		return nil, v.mismatch(TagTensorList)
	}
	return v.tensorList, nil
}

// Clone returns a copy of v that is deep with respect to list payloads and
// shared with respect to tensors: the clone gets its own backing arrays, but
// a boxed tensor (or tensor list element) is aliased, not duplicated.
func (v Value) Clone() Value {
	c := v
	switch v.tag {
	case TagIntList:
		c.intList = append([]int64(nil), v.intList...)
	case TagDoubleList:
		c.doubleList = append([]float64(nil), v.doubleList...)
	case TagTensorList:
		c.tensorList = append([]Tensor(nil), v.tensorList...)
	}
	return c
}

// Move transfers the payload out of v, leaving v in the None state, and
// returns a Value holding the payload. Tensors move without touching their
// reference graph.
func (v *Value) Move() Value {
	moved := *v
	*v = Value{}
	return moved
}

// DebugString returns a short description of the value for diagnostics.
func (v Value) DebugString() string {
	switch v.tag {
	case TagNone:
		return "None"
	case TagTensor:
		return fmt.Sprintf("Tensor(%s)", v.tensor.DebugString())
	case TagDouble:
		return fmt.Sprintf("Double(%g)", v.double)
	case TagInt:
		return fmt.Sprintf("Int(%d)", v.integer)
	case TagBool:
		return fmt.Sprintf("Bool(%t)", v.boolean)
	case TagString:
		return fmt.Sprintf("String(%q)", v.str)
	case TagIntList:
		return fmt.Sprintf("IntList(%v)", v.intList)
	case TagDoubleList:
		return fmt.Sprintf("DoubleList(%v)", v.doubleList)
	case TagTensorList:
		descs := make([]string, len(v.tensorList))
		for i, t := range v.tensorList {
			descs[i] = t.DebugString()
		}
		return fmt.Sprintf("TensorList[%s]", strings.Join(descs, "; "))
	default:
		return "Unknown"
	}
}
