package concept

import (
	"fmt"

	"github.com/wbrown/typedb-core/concept/vertex"
)

// Thing is a tagged variant over the three instance kinds (entity, relation,
// attribute), following the design note that favours one flat struct with
// capability-probe methods over a deep trait/interface hierarchy: callers
// ask "does this Thing own attributes" rather than downcasting through
// several embedded interfaces.
type Thing struct {
	vtx   vertex.Vertex
	typ   SchemaType
	value *Value // non-nil only for attribute things
}

// NewEntity wraps a vertex as an entity Thing of the given type.
func NewEntity(v vertex.Vertex, t EntityType) Thing {
	return Thing{vtx: v, typ: t}
}

// NewRelation wraps a vertex as a relation Thing of the given type.
func NewRelation(v vertex.Vertex, t RelationType) Thing {
	return Thing{vtx: v, typ: t}
}

// NewAttribute wraps a vertex as an attribute Thing carrying a value.
func NewAttribute(v vertex.Vertex, t AttributeType, val Value) Thing {
	return Thing{vtx: v, typ: t, value: &val}
}

// Vertex returns the thing's storage identity.
func (t Thing) Vertex() vertex.Vertex { return t.vtx }

// Type returns the thing's immediate schema type.
func (t Thing) Type() SchemaType { return t.typ }

// IsEntity reports whether this Thing is an entity.
func (t Thing) IsEntity() bool { return t.vtx.Prefix == vertex.PrefixEntity }

// IsRelation reports whether this Thing is a relation.
func (t Thing) IsRelation() bool { return t.vtx.Prefix == vertex.PrefixRelation }

// IsAttribute reports whether this Thing is an attribute.
func (t Thing) IsAttribute() bool { return t.vtx.Prefix == vertex.PrefixAttribute }

// CanOwnAttributes reports whether this Thing's kind may own attributes
// (entities and relations; never attributes themselves).
func (t Thing) CanOwnAttributes() bool { return t.IsEntity() || t.IsRelation() }

// CanPlayRoles reports whether this Thing's kind may play roles in a
// relation (entities, relations, and attributes may all play roles).
func (t Thing) CanPlayRoles() bool { return true }

// AsEntityType returns the thing's type as an EntityType; ok is false if
// this Thing is not an entity.
func (t Thing) AsEntityType() (EntityType, bool) {
	et, ok := t.typ.(EntityType)
	return et, ok
}

// AsRelationType returns the thing's type as a RelationType.
func (t Thing) AsRelationType() (RelationType, bool) {
	rt, ok := t.typ.(RelationType)
	return rt, ok
}

// AsAttributeType returns the thing's type as an AttributeType.
func (t Thing) AsAttributeType() (AttributeType, bool) {
	at, ok := t.typ.(AttributeType)
	return at, ok
}

// Value returns the attribute's value. Panics if this Thing is not an
// attribute: callers must check IsAttribute first.
func (t Thing) Value() Value {
	if t.value == nil {
		panic("concept: Value() called on a non-attribute Thing")
	}
	return *t.value
}

func (t Thing) String() string {
	if t.IsAttribute() {
		return fmt.Sprintf("%s(%s=%s)", t.vtx, t.typ.Label(), t.value)
	}
	return fmt.Sprintf("%s(%s)", t.vtx, t.typ.Label())
}

// Equal compares two things by vertex identity alone; the type and value
// fields are derived from the vertex at creation and never diverge for the
// same vertex within one snapshot.
func (t Thing) Equal(other Thing) bool { return t.vtx == other.vtx }
