package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/pattern"
	"github.com/wbrown/typedb-core/typeinfo"
)

type fakeChecker struct {
	available map[string]bool
}

func (f fakeChecker) RelationIndexAvailable(rt concept.RelationType) (bool, error) {
	return f.available[rt.Label()], nil
}

func TestPruneRedundantLinksDeduplicationRemovesNonCollidingGuard(t *testing.T) {
	reg := concept.NewTypeRegistry()
	friend := reg.DefineRoleType("friend", concept.RoleType{})
	colleague := reg.DefineRoleType("colleague", concept.RoleType{})
	person := reg.DefineEntityType("person", concept.EntityType{})

	r := ir.Variable{Name: "r"}
	a := ir.Variable{Name: "a"}
	b := ir.Variable{Name: "b"}

	first := pattern.Links{Relation: r, Player: a, Role: pattern.ConstantType(friend)}
	second := pattern.Links{Relation: r, Player: b, Role: pattern.ConstantType(colleague)}

	conj := pattern.Conjunction{Constraints: []pattern.Constraint{
		first,
		second,
		pattern.LinksDeduplication{First: first, Second: second},
	}}

	ann := typeinfo.NewAnnotations()
	ann.SetLinksAt(0, typeinfo.LinksAnnotation{
		Constraint: first,
		PlayerToRole: map[concept.SchemaType]ir.TypeSet{
			concept.SchemaType(person): ir.NewTypeSet(concept.SchemaType(friend)),
		},
	})
	ann.SetLinksAt(1, typeinfo.LinksAnnotation{
		Constraint: second,
		PlayerToRole: map[concept.SchemaType]ir.TypeSet{
			concept.SchemaType(person): ir.NewTypeSet(concept.SchemaType(colleague)),
		},
	})

	out, err := ApplyTransformations(conj, ann, fakeChecker{})
	require.NoError(t, err)

	for _, c := range out.Constraints {
		_, isDedup := c.(pattern.LinksDeduplication)
		assert.False(t, isDedup, "non-colliding dedup guard should have been pruned")
	}
	assert.Len(t, out.Constraints, 2)
}

func TestPruneKeepsLinksDeduplicationWhenRolesCanCollide(t *testing.T) {
	reg := concept.NewTypeRegistry()
	friend := reg.DefineRoleType("friend", concept.RoleType{})
	person := reg.DefineEntityType("person", concept.EntityType{})

	r := ir.Variable{Name: "r"}
	a := ir.Variable{Name: "a"}
	b := ir.Variable{Name: "b"}

	first := pattern.Links{Relation: r, Player: a, Role: pattern.ConstantType(friend)}
	second := pattern.Links{Relation: r, Player: b, Role: pattern.ConstantType(friend)}

	conj := pattern.Conjunction{Constraints: []pattern.Constraint{
		first,
		second,
		pattern.LinksDeduplication{First: first, Second: second},
	}}

	ann := typeinfo.NewAnnotations()
	sharedRoles := ir.NewTypeSet(concept.SchemaType(friend))
	ann.SetLinksAt(0, typeinfo.LinksAnnotation{
		Constraint:   first,
		PlayerToRole: map[concept.SchemaType]ir.TypeSet{concept.SchemaType(person): sharedRoles},
	})
	ann.SetLinksAt(1, typeinfo.LinksAnnotation{
		Constraint:   second,
		PlayerToRole: map[concept.SchemaType]ir.TypeSet{concept.SchemaType(person): sharedRoles},
	})

	out, err := ApplyTransformations(conj, ann, fakeChecker{})
	require.NoError(t, err)

	found := false
	for _, c := range out.Constraints {
		if _, ok := c.(pattern.LinksDeduplication); ok {
			found = true
		}
	}
	assert.True(t, found, "dedup guard must be kept when roles can collide")
}

func TestRelationIndexTransformationRewritesTwoPlayerRelation(t *testing.T) {
	reg := concept.NewTypeRegistry()
	friendship := reg.DefineRelationType("friendship", concept.RelationType{})
	friend := reg.DefineRoleType("friend", concept.RoleType{})

	r := ir.Variable{Name: "r"}
	a := ir.Variable{Name: "a"}
	b := ir.Variable{Name: "b"}

	conj := pattern.Conjunction{Constraints: []pattern.Constraint{
		pattern.Links{Relation: r, Player: a, Role: pattern.ConstantType(friend)},
		pattern.Links{Relation: r, Player: b, Role: pattern.ConstantType(friend)},
	}}

	ann := typeinfo.NewAnnotations()
	ann.SetTypesOf(r, ir.NewTypeSet(concept.SchemaType(friendship)))

	checker := fakeChecker{available: map[string]bool{"friendship": true}}
	out, err := ApplyTransformations(conj, ann, checker)
	require.NoError(t, err)

	require.Len(t, out.Constraints, 1)
	lookup, ok := out.Constraints[0].(pattern.RelationIndexLookup)
	require.True(t, ok, "expected a RelationIndexLookup, got %T", out.Constraints[0])
	assert.Equal(t, a, lookup.Player1)
	assert.Equal(t, b, lookup.Player2)
}

func TestRelationIndexTransformationSkipsWhenIndexUnavailable(t *testing.T) {
	reg := concept.NewTypeRegistry()
	friendship := reg.DefineRelationType("friendship", concept.RelationType{})
	friend := reg.DefineRoleType("friend", concept.RoleType{})

	r := ir.Variable{Name: "r"}
	a := ir.Variable{Name: "a"}
	b := ir.Variable{Name: "b"}

	conj := pattern.Conjunction{Constraints: []pattern.Constraint{
		pattern.Links{Relation: r, Player: a, Role: pattern.ConstantType(friend)},
		pattern.Links{Relation: r, Player: b, Role: pattern.ConstantType(friend)},
	}}

	ann := typeinfo.NewAnnotations()
	ann.SetTypesOf(r, ir.NewTypeSet(concept.SchemaType(friendship)))

	out, err := ApplyTransformations(conj, ann, fakeChecker{})
	require.NoError(t, err)
	assert.Len(t, out.Constraints, 2, "rewrite must not apply without a built relation index")
}
