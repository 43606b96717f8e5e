// Package typeinfo holds the result of type inference over a conjunction:
// the set of schema types each variable may be bound to, and per-constraint
// annotations the static optimiser consults when deciding rewrites. Here
// "annotation" means type information rather than query-lifecycle event
// tracing.
package typeinfo

import (
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/pattern"
)

// VariableTypes maps every variable appearing in a conjunction to the set
// of schema types it may be bound to at that program point.
type VariableTypes map[ir.Variable]ir.TypeSet

// LinksAnnotation records, for one Links constraint, which role types each
// candidate player type may play. The static optimiser's redundant-
// LinksDeduplication rule (R1) inspects player_to_role on a pair of these
// to decide whether the two Links constraints can ever bind the same
// (player, role) pair.
type LinksAnnotation struct {
	Constraint   pattern.Links
	PlayerToRole map[concept.SchemaType]ir.TypeSet
}

// RoleTypesOf returns the role types available to player across every
// candidate in this annotation (nil if player is not a key of
// PlayerToRole).
func (a LinksAnnotation) RoleTypesOf(player concept.SchemaType) ir.TypeSet {
	return a.PlayerToRole[player]
}

// Annotations is the full type-inference result for one conjunction: a
// variable type map plus one LinksAnnotation per Links constraint, indexed
// by its position in Conjunction.Constraints.
type Annotations struct {
	Variables VariableTypes
	Links     map[int]LinksAnnotation
}

// NewAnnotations builds an empty Annotations ready to be populated by a
// type-inference pass.
func NewAnnotations() *Annotations {
	return &Annotations{
		Variables: make(VariableTypes),
		Links:     make(map[int]LinksAnnotation),
	}
}

// TypesOf returns the inferred type set for v, or an empty set if v was
// never annotated (e.g. it does not appear in the conjunction).
func (a *Annotations) TypesOf(v ir.Variable) ir.TypeSet {
	if s, ok := a.Variables[v]; ok {
		return s
	}
	return ir.TypeSet{}
}

// SetTypesOf records the inferred type set for v.
func (a *Annotations) SetTypesOf(v ir.Variable, types ir.TypeSet) {
	a.Variables[v] = types
}

// LinksAt returns the LinksAnnotation recorded for the constraint at index
// i, or ok=false if none was recorded (i.e. constraint i is not a Links).
func (a *Annotations) LinksAt(i int) (LinksAnnotation, bool) {
	ann, ok := a.Links[i]
	return ann, ok
}

// SetLinksAt records a LinksAnnotation for the constraint at index i.
func (a *Annotations) SetLinksAt(i int, ann LinksAnnotation) {
	a.Links[i] = ann
}
