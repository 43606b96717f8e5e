// Package ir holds the variable and row-shape model shared by pattern
// parsing, static optimisation, and execution: named variables, the
// positional slots they compile down to, type sets, and the row values
// that flow between executor stages.
package ir

import (
	"fmt"

	"github.com/wbrown/typedb-core/concept"
)

// Variable is a named logical variable as it appears in a pattern, before
// compilation assigns it a row position. Comparable, so it is usable as a
// map key in annotation and binding tables.
type Variable struct {
	Name string
}

func (v Variable) String() string { return "$" + v.Name }

// VariablePosition is the compiled, positional address of a variable within
// a row: an index assigned once by the executable builder and stable for
// the lifetime of that executable. Using positions instead of names in the
// hot path avoids per-row map lookups.
type VariablePosition int

func (p VariablePosition) String() string { return fmt.Sprintf("pos[%d]", int(p)) }

// TypeSet is the set of concrete schema types a variable may be bound to at
// a given program point, as computed by type inference. Membership checks
// and intersection are the only operations the optimiser needs.
type TypeSet map[concept.SchemaType]struct{}

// NewTypeSet builds a TypeSet from a list of types.
func NewTypeSet(types ...concept.SchemaType) TypeSet {
	s := make(TypeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Contains reports whether t is a member of the set.
func (s TypeSet) Contains(t concept.SchemaType) bool {
	_, ok := s[t]
	return ok
}

// Intersects reports whether s and other share any member.
func (s TypeSet) Intersects(other TypeSet) bool {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for t := range small {
		if _, ok := big[t]; ok {
			return true
		}
	}
	return false
}

// Slot is one column of a compiled row schema: the position it occupies and
// the source variable it was compiled from.
type Slot struct {
	Position VariablePosition
	Name     Variable
}

// RowSchema is the compiled, ordered list of slots an executable's rows
// carry. Position i of every Row produced under this schema corresponds to
// Slots[i].
type RowSchema struct {
	Slots []Slot
}

// NewRowSchema builds a schema assigning sequential positions to the given
// variables, in order.
func NewRowSchema(vars ...Variable) RowSchema {
	slots := make([]Slot, len(vars))
	for i, v := range vars {
		slots[i] = Slot{Position: VariablePosition(i), Name: v}
	}
	return RowSchema{Slots: slots}
}

// Width returns the number of columns in the schema.
func (s RowSchema) Width() int { return len(s.Slots) }

// PositionOf returns the position assigned to v, or ok=false if v is not in
// the schema.
func (s RowSchema) PositionOf(v Variable) (VariablePosition, bool) {
	for _, slot := range s.Slots {
		if slot.Name == v {
			return slot.Position, true
		}
	}
	return 0, false
}

// BindingKind distinguishes the two shapes a row cell can hold.
type BindingKind int

const (
	BindingThing BindingKind = iota
	BindingValue
)

// Binding is one cell of a Row: either a reference to an instance (Thing)
// or a standalone value produced by an expression, never both. The zero
// Binding is unbound (Bound is false); constructors always set it, so a
// missing map entry and an explicitly unbound cell mean the same thing.
type Binding struct {
	Bound bool
	Kind  BindingKind
	Thing concept.Thing
	Value concept.Value
}

// ThingBinding wraps a Thing as a Binding.
func ThingBinding(t concept.Thing) Binding { return Binding{Bound: true, Kind: BindingThing, Thing: t} }

// ValueBinding wraps a Value as a Binding.
func ValueBinding(v concept.Value) Binding { return Binding{Bound: true, Kind: BindingValue, Value: v} }

func (b Binding) String() string {
	if !b.Bound {
		return "_"
	}
	if b.Kind == BindingThing {
		return b.Thing.String()
	}
	return b.Value.String()
}

// Row is a fully positional tuple of bindings, one per slot of some
// RowSchema. Rows produced by a streaming iterator are lending: the slice
// backing a Row may be reused by the next Advance call, so callers that
// need a Row to outlive the next advance must Clone it.
type Row []Binding

// Clone returns an independent copy of the row, safe to retain past the
// next Advance call on the iterator that produced it.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

func (r Row) String() string {
	out := "("
	for i, b := range r {
		if i > 0 {
			out += ", "
		}
		out += b.String()
	}
	return out + ")"
}
