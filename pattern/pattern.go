// Package pattern holds the pattern AST the static optimiser rewrites and
// the executable builder compiles: conjunctions of constraints over
// variables, modeling the typed traversal-graph edges a query walks (Isa,
// Has, Links) as a flat, ordered constraint list.
package pattern

import (
	"fmt"

	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/ir"
)

// Constraint is one clause of a conjunction. The set of implementations is
// closed (a sealed-interface style list below); executor and optimiser code
// dispatches on concrete type via a type switch rather than virtual calls.
type Constraint interface {
	constraint()
	fmt.Stringer
}

// TypeSource names a schema type either as a compile-time constant or as a
// bound row variable (for patterns that compare against a type parameter).
type TypeSource struct {
	Constant   concept.SchemaType
	Variable   ir.Variable
	isVariable bool
}

// ConstantType builds a TypeSource fixed to a known type.
func ConstantType(t concept.SchemaType) TypeSource { return TypeSource{Constant: t} }

// VariableType builds a TypeSource resolved from a bound variable at run time.
func VariableType(v ir.Variable) TypeSource { return TypeSource{Variable: v, isVariable: true} }

// IsVariable reports whether this source resolves from a row variable.
func (s TypeSource) IsVariable() bool { return s.isVariable }

func (s TypeSource) String() string {
	if s.isVariable {
		return s.Variable.String()
	}
	return s.Constant.String()
}

// Isa constrains Thing to be an instance of exactly Type; the executor does
// not match instances of Type's subtypes.
type Isa struct {
	Thing ir.Variable
	Type  TypeSource
}

func (Isa) constraint() {}
func (c Isa) String() string { return fmt.Sprintf("isa(%s, %s)", c.Thing, c.Type) }

// Has constrains Owner to own an Attribute instance.
type Has struct {
	Owner     ir.Variable
	Attribute ir.Variable
}

func (Has) constraint() {}
func (c Has) String() string { return fmt.Sprintf("has(%s, %s)", c.Owner, c.Attribute) }

// Links constrains Relation to have Player playing Role. The executor
// requires Role to be a constant role type; a variable or zero TypeSource
// is rejected as an invalid plan.
type Links struct {
	Relation ir.Variable
	Player   ir.Variable
	Role     TypeSource
}

func (Links) constraint() {}
func (c Links) String() string {
	return fmt.Sprintf("links(%s, %s, %s)", c.Relation, c.Player, c.Role)
}

// LinksDeduplication guards a pair of Links constraints sharing a Relation
// variable: it requires the two Links bind to distinct (player, role)
// participations, preventing a single role-player edge from satisfying both
// constraints at once. This is the constraint R1 (redundant-pruning) may
// remove entirely when the two Links' role-type sets cannot overlap.
type LinksDeduplication struct {
	First  Links
	Second Links
}

func (LinksDeduplication) constraint() {}
func (c LinksDeduplication) String() string {
	return fmt.Sprintf("distinct(%s, %s)", c.First, c.Second)
}

// ComparisonOp enumerates the value/thing comparison operators a
// Comparison constraint may apply.
type ComparisonOp int

const (
	CompareEqual ComparisonOp = iota
	CompareNotEqual
	CompareLess
	CompareLessOrEqual
	CompareGreater
	CompareGreaterOrEqual
)

func (op ComparisonOp) String() string {
	switch op {
	case CompareEqual:
		return "=="
	case CompareNotEqual:
		return "!="
	case CompareLess:
		return "<"
	case CompareLessOrEqual:
		return "<="
	case CompareGreater:
		return ">"
	case CompareGreaterOrEqual:
		return ">="
	default:
		return "?"
	}
}

// Comparison constrains two already-bound variables by a value ordering.
type Comparison struct {
	Left  ir.Variable
	Op    ComparisonOp
	Right ir.Variable
}

func (Comparison) constraint() {}
func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

// RelationIndexLookup replaces a pair of Links constraints over a 2-player
// relation with a single constraint, as produced by the optimiser's R2
// rewrite. The executor evaluates it by walking from a bound player to its
// relations and on to the other role's players over the ordinary
// role-player edges; no separate index keyed by player and role types is
// stored or read. It is never present in a pattern before optimisation runs.
type RelationIndexLookup struct {
	Relation ir.Variable // may be the zero Variable if the relation itself is not projected
	Player1  ir.Variable
	Role1    TypeSource
	Player2  ir.Variable
	Role2    TypeSource
}

func (RelationIndexLookup) constraint() {}
func (c RelationIndexLookup) String() string {
	return fmt.Sprintf("relindex(%s:%s <-> %s:%s)", c.Player1, c.Role1, c.Player2, c.Role2)
}

// Conjunction is an ordered list of constraints to satisfy together. Order
// matters: it is the plan order execution must respect, since the caller
// (the static optimiser) has already decided the join order.
type Conjunction struct {
	Constraints []Constraint
}

// Variables returns every distinct variable referenced anywhere in the
// conjunction, in first-appearance order.
func (c Conjunction) Variables() []ir.Variable {
	seen := make(map[ir.Variable]struct{})
	var out []ir.Variable
	add := func(v ir.Variable) {
		if v.Name == "" {
			return
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, c := range c.Constraints {
		switch c := c.(type) {
		case Isa:
			add(c.Thing)
			if c.Type.IsVariable() {
				add(c.Type.Variable)
			}
		case Has:
			add(c.Owner)
			add(c.Attribute)
		case Links:
			add(c.Relation)
			add(c.Player)
			if c.Role.IsVariable() {
				add(c.Role.Variable)
			}
		case LinksDeduplication:
			add(c.First.Relation)
			add(c.First.Player)
			add(c.Second.Player)
		case Comparison:
			add(c.Left)
			add(c.Right)
		case RelationIndexLookup:
			add(c.Relation)
			add(c.Player1)
			add(c.Player2)
		}
	}
	return out
}
