package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeRegistrySubtyping(t *testing.T) {
	reg := NewTypeRegistry()
	animal := reg.DefineEntityType("animal", EntityType{})
	dog := reg.DefineEntityType("dog", animal)
	poodle := reg.DefineEntityType("poodle", dog)

	require.Equal(t, "animal", animal.Label())
	require.Equal(t, "dog", dog.Label())
	require.Equal(t, "poodle", poodle.Label())

	assert.True(t, IsSubtypeOf(reg, KindEntity, poodle.id, animal.id))
}

func TestEntityTypeSubtypesDeclared(t *testing.T) {
	reg := NewTypeRegistry()
	animal := reg.DefineEntityType("animal", EntityType{})
	dog := reg.DefineEntityType("dog", animal)
	cat := reg.DefineEntityType("cat", animal)

	subs := animal.Subtypes()
	require.Len(t, subs, 2)
	labels := []string{subs[0].Label(), subs[1].Label()}
	assert.Contains(t, labels, dog.Label())
	assert.Contains(t, labels, cat.Label())
}

func TestRoleTypeIntersects(t *testing.T) {
	reg := NewTypeRegistry()
	friend := reg.DefineRoleType("friend", RoleType{})
	closeFriend := reg.DefineRoleType("close-friend", friend)
	stranger := reg.DefineRoleType("stranger", RoleType{})

	assert.True(t, RoleTypeIntersects(reg, []RoleType{closeFriend}, []RoleType{friend}))
	assert.False(t, RoleTypeIntersects(reg, []RoleType{stranger}, []RoleType{friend}))
}

func TestRelatesAndPlays(t *testing.T) {
	reg := NewTypeRegistry()
	person := reg.DefineEntityType("person", EntityType{})
	friendship := reg.DefineRelationType("friendship", RelationType{})
	friend := reg.DefineRoleType("friend", RoleType{})
	stranger := reg.DefineRoleType("stranger", RoleType{})

	reg.DefineRelates(friendship, friend)
	reg.DefinePlays(person, friend)

	assert.True(t, friendship.Relates(friend))
	assert.False(t, friendship.Relates(stranger))
	assert.True(t, person.Plays(friend))
	assert.False(t, person.Plays(stranger))
}

func TestPlaysInheritedBySubtype(t *testing.T) {
	reg := NewTypeRegistry()
	animal := reg.DefineEntityType("animal", EntityType{})
	dog := reg.DefineEntityType("dog", animal)
	friend := reg.DefineRoleType("friend", RoleType{})

	reg.DefinePlays(animal, friend)

	assert.True(t, dog.Plays(friend), "a subtype must inherit its supertype's capabilities")
}

func TestPlaysDeclaredSubroleDoesNotGrantSuperrole(t *testing.T) {
	reg := NewTypeRegistry()
	person := reg.DefineEntityType("person", EntityType{})
	friend := reg.DefineRoleType("friend", RoleType{})
	closeFriend := reg.DefineRoleType("close-friend", friend)

	reg.DefinePlays(person, closeFriend)

	assert.True(t, person.Plays(closeFriend))
	assert.False(t, person.Plays(friend), "declaring close-friend does not grant the broader friend role")
}

func TestTypeByIDRoundTrips(t *testing.T) {
	reg := NewTypeRegistry()
	person := reg.DefineEntityType("person", EntityType{})

	got, ok := reg.TypeByID(KindEntity, person.ID())
	require.True(t, ok)
	assert.Equal(t, person.Label(), got.Label())
}
