// Package concept models the schema and instance layer: value types,
// type handles arranged in a sub/super hierarchy, and thing references.
package concept

import (
	"fmt"
	"math"
)

// ValueType tags the four value variants a Value can carry.
type ValueType int

const (
	ValueTypeBoolean ValueType = iota
	ValueTypeLong
	ValueTypeDouble
	ValueTypeString
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeBoolean:
		return "boolean"
	case ValueTypeLong:
		return "long"
	case ValueTypeDouble:
		return "double"
	case ValueTypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged union over the four supported attribute value
// types. The zero Value is not valid; always construct one through the
// typed constructors below so the tag and payload stay in sync.
type Value struct {
	valueType ValueType
	boolVal   bool
	longVal   int64
	// doubleBits holds the canonical IEEE-754 bit pattern so NaN payloads
	// survive round-tripping through storage unchanged.
	doubleBits uint64
	stringVal  string
}

// Boolean constructs a boolean Value.
func Boolean(b bool) Value { return Value{valueType: ValueTypeBoolean, boolVal: b} }

// Long constructs an integer Value.
func Long(v int64) Value { return Value{valueType: ValueTypeLong, longVal: v} }

// Double constructs a floating point Value, preserving the exact IEEE-754
// bit pattern given (including a NaN's payload bits) so retrieval returns
// precisely what was stored.
func Double(v float64) Value {
	return Value{valueType: ValueTypeDouble, doubleBits: math.Float64bits(v)}
}

// String constructs a string Value.
func String(s string) Value { return Value{valueType: ValueTypeString, stringVal: s} }

// Type reports which of the four variants this Value holds. Determining it
// is O(1): a single field read, never a walk of encoded bytes.
func (v Value) Type() ValueType { return v.valueType }

func (v Value) AsBoolean() bool    { return v.boolVal }
func (v Value) AsLong() int64      { return v.longVal }
func (v Value) AsDouble() float64  { return math.Float64frombits(v.doubleBits) }
func (v Value) AsString() string   { return v.stringVal }

// Equal compares two values for exact equality, including NaN-equals-NaN
// under the canonical bit pattern (attribute identity requires this, unlike
// IEEE-754 comparison semantics).
func (v Value) Equal(other Value) bool {
	if v.valueType != other.valueType {
		return false
	}
	switch v.valueType {
	case ValueTypeBoolean:
		return v.boolVal == other.boolVal
	case ValueTypeLong:
		return v.longVal == other.longVal
	case ValueTypeDouble:
		return v.doubleBits == other.doubleBits
	case ValueTypeString:
		return v.stringVal == other.stringVal
	default:
		return false
	}
}

// Compare orders two values of the same value type. Comparing values of
// different types panics: callers must check Type() first, since comparisons
// must be type-checked before execution.
func (v Value) Compare(other Value) int {
	if v.valueType != other.valueType {
		panic(fmt.Sprintf("concept: cannot compare %s to %s", v.valueType, other.valueType))
	}
	switch v.valueType {
	case ValueTypeBoolean:
		if v.boolVal == other.boolVal {
			return 0
		}
		if !v.boolVal {
			return -1
		}
		return 1
	case ValueTypeLong:
		switch {
		case v.longVal < other.longVal:
			return -1
		case v.longVal > other.longVal:
			return 1
		default:
			return 0
		}
	case ValueTypeDouble:
		a, b := v.AsDouble(), other.AsDouble()
		switch {
		case math.IsNaN(a) || math.IsNaN(b):
			// IEEE-754: NaN compares unordered and unequal to everything,
			// including itself.
			return 1
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	case ValueTypeString:
		switch {
		case v.stringVal < other.stringVal:
			return -1
		case v.stringVal > other.stringVal:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.valueType {
	case ValueTypeBoolean:
		return fmt.Sprintf("%t", v.boolVal)
	case ValueTypeLong:
		return fmt.Sprintf("%d", v.longVal)
	case ValueTypeDouble:
		return fmt.Sprintf("%v", v.AsDouble())
	case ValueTypeString:
		return v.stringVal
	default:
		return "<invalid value>"
	}
}
