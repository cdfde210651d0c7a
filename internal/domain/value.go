package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType is the tag of the Value union.
type ValueType int

const (
	TypeUnknown ValueType = iota
	TypeBoolean
	TypeInteger
	TypeReal
	TypeString
	TypeBooleanArray
	TypeIntegerArray
	TypeRealArray
	TypeStringArray
	TypeNodeState
	TypeNodeOutcome
	TypeFailureType
	TypeCommandHandle
)

func (t ValueType) String() string {
	switch t {
	case TypeBoolean:
		return "Boolean"
	case TypeInteger:
		return "Integer"
	case TypeReal:
		return "Real"
	case TypeString:
		return "String"
	case TypeBooleanArray:
		return "BooleanArray"
	case TypeIntegerArray:
		return "IntegerArray"
	case TypeRealArray:
		return "RealArray"
	case TypeStringArray:
		return "StringArray"
	case TypeNodeState:
		return "NodeState"
	case TypeNodeOutcome:
		return "NodeOutcome"
	case TypeFailureType:
		return "FailureType"
	case TypeCommandHandle:
		return "CommandHandle"
	default:
		return "Unknown"
	}
}

// IsArray reports whether t is one of the four array types.
func (t ValueType) IsArray() bool {
	switch t {
	case TypeBooleanArray, TypeIntegerArray, TypeRealArray, TypeStringArray:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t is Integer or Real.
func (t ValueType) IsNumeric() bool {
	return t == TypeInteger || t == TypeReal
}

// ElementType returns the scalar element type of an array type, or
// TypeUnknown if t is not an array type.
func (t ValueType) ElementType() ValueType {
	switch t {
	case TypeBooleanArray:
		return TypeBoolean
	case TypeIntegerArray:
		return TypeInteger
	case TypeRealArray:
		return TypeReal
	case TypeStringArray:
		return TypeString
	default:
		return TypeUnknown
	}
}

// Value is the tagged union every expression read returns. A zero Value
// is the unknown value of TypeUnknown.
type Value struct {
	typ   ValueType
	known bool

	boolean bool
	integer int64
	real    float64
	str     string

	// arrayKnown[i] is false when that element is individually unknown.
	arrayKnown []bool
	boolArr    []bool
	intArr     []int64
	realArr    []float64
	strArr     []string
}

// Unknown returns the unknown value of the given type.
func Unknown(t ValueType) Value {
	return Value{typ: t, known: false}
}

func BooleanValue(b bool) Value  { return Value{typ: TypeBoolean, known: true, boolean: b} }
func IntegerValue(i int64) Value { return Value{typ: TypeInteger, known: true, integer: i} }
func RealValue(r float64) Value  { return Value{typ: TypeReal, known: true, real: r} }
func StringValue(s string) Value { return Value{typ: TypeString, known: true, str: s} }

func NodeStateValue(s NodeState) Value {
	return Value{typ: TypeNodeState, known: true, integer: int64(s)}
}
func NodeOutcomeValue(o NodeOutcome) Value {
	return Value{typ: TypeNodeOutcome, known: true, integer: int64(o)}
}
func FailureTypeValue(f FailureType) Value {
	return Value{typ: TypeFailureType, known: true, integer: int64(f)}
}
func CommandHandleValue(h CommandHandle) Value {
	return Value{typ: TypeCommandHandle, known: true, integer: int64(h)}
}

// BooleanArrayValue builds a known array value; elements with no
// corresponding `known` entry (or known == nil) are all known.
func BooleanArrayValue(elems []bool, known []bool) Value {
	return Value{typ: TypeBooleanArray, known: true, boolArr: elems, arrayKnown: known}
}
func IntegerArrayValue(elems []int64, known []bool) Value {
	return Value{typ: TypeIntegerArray, known: true, intArr: elems, arrayKnown: known}
}
func RealArrayValue(elems []float64, known []bool) Value {
	return Value{typ: TypeRealArray, known: true, realArr: elems, arrayKnown: known}
}
func StringArrayValue(elems []string, known []bool) Value {
	return Value{typ: TypeStringArray, known: true, strArr: elems, arrayKnown: known}
}

// Type returns the value's tag.
func (v Value) Type() ValueType { return v.typ }

// IsKnown reports whether the value carries a known payload.
func (v Value) IsKnown() bool { return v.known }

// Bool returns the Boolean payload. ok is false if v is not known Boolean.
func (v Value) Bool() (b bool, ok bool) {
	if !v.known || v.typ != TypeBoolean {
		return false, false
	}
	return v.boolean, true
}

// Int returns the Integer payload.
func (v Value) Int() (i int64, ok bool) {
	if !v.known || v.typ != TypeInteger {
		return 0, false
	}
	return v.integer, true
}

// Real returns the value as a Real, widening Integer
// ("Integer widens to Real; Boolean does not widen").
func (v Value) Real() (r float64, ok bool) {
	if !v.known {
		return 0, false
	}
	switch v.typ {
	case TypeReal:
		return v.real, true
	case TypeInteger:
		return float64(v.integer), true
	default:
		return 0, false
	}
}

// Str returns the String payload.
func (v Value) Str() (s string, ok bool) {
	if !v.known || v.typ != TypeString {
		return "", false
	}
	return v.str, true
}

// NodeStateVal returns the enumerated NodeState payload.
func (v Value) NodeStateVal() (NodeState, bool) {
	if !v.known || v.typ != TypeNodeState {
		return 0, false
	}
	return NodeState(v.integer), true
}

func (v Value) NodeOutcomeVal() (NodeOutcome, bool) {
	if !v.known || v.typ != TypeNodeOutcome {
		return 0, false
	}
	return NodeOutcome(v.integer), true
}

func (v Value) FailureTypeVal() (FailureType, bool) {
	if !v.known || v.typ != TypeFailureType {
		return 0, false
	}
	return FailureType(v.integer), true
}

func (v Value) CommandHandleVal() (CommandHandle, bool) {
	if !v.known || v.typ != TypeCommandHandle {
		return 0, false
	}
	return CommandHandle(v.integer), true
}

// Len returns the array length, or -1 if v is not a known array.
func (v Value) Len() int {
	if !v.known {
		return -1
	}
	switch v.typ {
	case TypeBooleanArray:
		return len(v.boolArr)
	case TypeIntegerArray:
		return len(v.intArr)
	case TypeRealArray:
		return len(v.realArr)
	case TypeStringArray:
		return len(v.strArr)
	default:
		return -1
	}
}

// ElementKnown reports whether array element i is known.
func (v Value) ElementKnown(i int) bool {
	if v.arrayKnown == nil {
		return true
	}
	if i < 0 || i >= len(v.arrayKnown) {
		return false
	}
	return v.arrayKnown[i]
}

func (v Value) BoolAt(i int) (bool, bool) {
	if v.typ != TypeBooleanArray || !v.known || !v.ElementKnown(i) || i >= len(v.boolArr) {
		return false, false
	}
	return v.boolArr[i], true
}

func (v Value) IntAt(i int) (int64, bool) {
	if v.typ != TypeIntegerArray || !v.known || !v.ElementKnown(i) || i >= len(v.intArr) {
		return 0, false
	}
	return v.intArr[i], true
}

func (v Value) RealAt(i int) (float64, bool) {
	if !v.known || !v.ElementKnown(i) {
		return 0, false
	}
	switch v.typ {
	case TypeRealArray:
		if i >= len(v.realArr) {
			return 0, false
		}
		return v.realArr[i], true
	case TypeIntegerArray:
		if i >= len(v.intArr) {
			return 0, false
		}
		return float64(v.intArr[i]), true
	default:
		return 0, false
	}
}

func (v Value) StrAt(i int) (string, bool) {
	if v.typ != TypeStringArray || !v.known || !v.ElementKnown(i) || i >= len(v.strArr) {
		return "", false
	}
	return v.strArr[i], true
}

// Equal reports whether two known values of the same type are equal.
// Unknown values (of any type) are never equal to anything, including
// another unknown: a write from unknown to unknown never triggers a
// change notification, because nothing "changed".
func (v Value) Equal(o Value) bool {
	if !v.known || !o.known {
		return false
	}
	if v.typ != o.typ {
		// Integer/Real cross-type comparisons are allowed via widening.
		if v.typ.IsNumeric() && o.typ.IsNumeric() {
			vr, _ := v.Real()
			or, _ := o.Real()
			return vr == or
		}
		return false
	}
	switch v.typ {
	case TypeBoolean:
		return v.boolean == o.boolean
	case TypeInteger:
		return v.integer == o.integer
	case TypeReal:
		return v.real == o.real
	case TypeString:
		return v.str == o.str
	case TypeNodeState, TypeNodeOutcome, TypeFailureType, TypeCommandHandle:
		return v.integer == o.integer
	case TypeBooleanArray:
		return equalBoolSlices(v, o)
	case TypeIntegerArray:
		return equalIntSlices(v, o)
	case TypeRealArray:
		return equalRealSlices(v, o)
	case TypeStringArray:
		return equalStrSlices(v, o)
	default:
		return false
	}
}

func equalBoolSlices(a, b Value) bool {
	if len(a.boolArr) != len(b.boolArr) {
		return false
	}
	for i := range a.boolArr {
		ak, bk := a.ElementKnown(i), b.ElementKnown(i)
		if ak != bk {
			return false
		}
		if ak && a.boolArr[i] != b.boolArr[i] {
			return false
		}
	}
	return true
}

func equalIntSlices(a, b Value) bool {
	if len(a.intArr) != len(b.intArr) {
		return false
	}
	for i := range a.intArr {
		ak, bk := a.ElementKnown(i), b.ElementKnown(i)
		if ak != bk {
			return false
		}
		if ak && a.intArr[i] != b.intArr[i] {
			return false
		}
	}
	return true
}

func equalRealSlices(a, b Value) bool {
	if len(a.realArr) != len(b.realArr) {
		return false
	}
	for i := range a.realArr {
		ak, bk := a.ElementKnown(i), b.ElementKnown(i)
		if ak != bk {
			return false
		}
		if ak && a.realArr[i] != b.realArr[i] {
			return false
		}
	}
	return true
}

func equalStrSlices(a, b Value) bool {
	if len(a.strArr) != len(b.strArr) {
		return false
	}
	for i := range a.strArr {
		ak, bk := a.ElementKnown(i), b.ElementKnown(i)
		if ak != bk {
			return false
		}
		if ak && a.strArr[i] != b.strArr[i] {
			return false
		}
	}
	return true
}

// String renders the value for logging/debugging.
func (v Value) String() string {
	if !v.known {
		return "UNKNOWN"
	}
	switch v.typ {
	case TypeBoolean:
		return strconv.FormatBool(v.boolean)
	case TypeInteger:
		return strconv.FormatInt(v.integer, 10)
	case TypeReal:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case TypeString:
		return v.str
	case TypeNodeState:
		return NodeState(v.integer).String()
	case TypeNodeOutcome:
		return NodeOutcome(v.integer).String()
	case TypeFailureType:
		return FailureType(v.integer).String()
	case TypeCommandHandle:
		return CommandHandle(v.integer).String()
	case TypeBooleanArray, TypeIntegerArray, TypeRealArray, TypeStringArray:
		return v.arrayString()
	default:
		return "UNKNOWN"
	}
}

func (v Value) arrayString() string {
	var b strings.Builder
	b.WriteString("[")
	n := v.Len()
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if !v.ElementKnown(i) {
			b.WriteString("UNKNOWN")
			continue
		}
		switch v.typ {
		case TypeBooleanArray:
			b.WriteString(strconv.FormatBool(v.boolArr[i]))
		case TypeIntegerArray:
			b.WriteString(strconv.FormatInt(v.intArr[i], 10))
		case TypeRealArray:
			b.WriteString(strconv.FormatFloat(v.realArr[i], 'g', -1, 64))
		case TypeStringArray:
			b.WriteString(fmt.Sprintf("%q", v.strArr[i]))
		}
	}
	b.WriteString("]")
	return b.String()
}
