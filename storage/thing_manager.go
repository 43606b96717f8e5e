package storage

import (
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/concept/vertex"
	"github.com/wbrown/typedb-core/typedberr"
)

// ThingManager reads and writes instance-layer state (things, ownership
// edges, role-player edges) against a Snapshot, applying writes across each
// affected index together so forward and reverse edges never diverge.
type ThingManager struct {
	registry  *concept.TypeRegistry
	generator *vertex.Generator
}

// NewThingManager builds a ThingManager bound to the given type registry and
// vertex generator.
func NewThingManager(registry *concept.TypeRegistry, generator *vertex.Generator) *ThingManager {
	return &ThingManager{registry: registry, generator: generator}
}

// TypeOf resolves the schema type a vertex was created under.
func (m *ThingManager) TypeOf(snap Snapshot, v vertex.Vertex) (concept.SchemaType, error) {
	raw, ok, err := snap.Get(typeOfKey(v))
	if err != nil {
		return nil, typedberr.NewConceptRead(err, "reading type of %s", v)
	}
	if !ok {
		return nil, typedberr.NewConceptRead(nil, "vertex %s has no recorded type", v)
	}
	t, ok := decodeTypeOf(m.registry, raw)
	if !ok {
		return nil, typedberr.NewConceptRead(nil, "vertex %s type record is corrupt", v)
	}
	return t, nil
}

// ThingOf resolves a full concept.Thing for a vertex, including its value if
// it is an attribute.
func (m *ThingManager) ThingOf(snap Snapshot, v vertex.Vertex) (concept.Thing, error) {
	t, err := m.TypeOf(snap, v)
	if err != nil {
		return concept.Thing{}, err
	}
	switch v.Prefix {
	case vertex.PrefixEntity:
		return concept.NewEntity(v, t.(concept.EntityType)), nil
	case vertex.PrefixRelation:
		return concept.NewRelation(v, t.(concept.RelationType)), nil
	case vertex.PrefixAttribute:
		raw, ok, err := snap.Get(attributeValueKey(v))
		if err != nil {
			return concept.Thing{}, typedberr.NewConceptRead(err, "reading value of %s", v)
		}
		if !ok {
			return concept.Thing{}, typedberr.NewConceptRead(nil, "attribute %s has no recorded value", v)
		}
		return concept.NewAttribute(v, t.(concept.AttributeType), decodeValue(raw)), nil
	default:
		return concept.Thing{}, typedberr.NewConceptRead(nil, "vertex %s has unknown prefix", v)
	}
}

// InstancesOfType returns every thing of exactly the given type (not
// including subtypes; callers wanting subtype closure should iterate
// TypeRegistry's subtype list and call this once per type).
func (m *ThingManager) InstancesOfType(snap Snapshot, t concept.SchemaType) ([]concept.Thing, error) {
	id := schemaTypeID(t)
	it, err := snap.Iterate(instanceOfPrefix(t.Kind(), id))
	if err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning instances of %s", t)
	}
	defer it.Close()

	var out []concept.Thing
	for it.Next() {
		key := it.Key()
		v := decodeVertexBytes(key[len(key)-13:])
		thing, err := m.ThingOf(snap, v)
		if err != nil {
			return nil, err
		}
		out = append(out, thing)
	}
	if err := it.Err(); err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning instances of %s", t)
	}
	return out, nil
}

// Owns returns the attribute things owner owns.
func (m *ThingManager) Owns(snap Snapshot, owner vertex.Vertex) ([]concept.Thing, error) {
	it, err := snap.Iterate(vkey(prefixHasFwd, owner))
	if err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning ownerships of %s", owner)
	}
	defer it.Close()

	var out []concept.Thing
	for it.Next() {
		key := it.Key()
		attr := decodeVertexBytes(key[len(key)-13:])
		thing, err := m.ThingOf(snap, attr)
		if err != nil {
			return nil, err
		}
		out = append(out, thing)
	}
	if err := it.Err(); err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning ownerships of %s", owner)
	}
	return out, nil
}

// Owners returns the vertices that own the given attribute.
func (m *ThingManager) Owners(snap Snapshot, attribute vertex.Vertex) ([]vertex.Vertex, error) {
	it, err := snap.Iterate(vkey(prefixHasRev, attribute))
	if err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning owners of %s", attribute)
	}
	defer it.Close()

	var out []vertex.Vertex
	for it.Next() {
		key := it.Key()
		out = append(out, decodeVertexBytes(key[len(key)-13:]))
	}
	if err := it.Err(); err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning owners of %s", attribute)
	}
	return out, nil
}

// RolePlayers returns the things playing roleType in relation.
func (m *ThingManager) RolePlayers(snap Snapshot, relation vertex.Vertex, roleType concept.RoleType) ([]concept.Thing, error) {
	rb := relation.Bytes()
	prefix := make([]byte, 1+len(rb)+4)
	prefix[0] = prefixLinksFwd
	copy(prefix[1:], rb[:])
	putUint32(prefix[1+len(rb):], roleType.ID())

	it, err := snap.Iterate(prefix)
	if err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning players of %s", relation)
	}
	defer it.Close()

	var out []concept.Thing
	for it.Next() {
		key := it.Key()
		player := decodeVertexBytes(key[len(key)-13:])
		thing, err := m.ThingOf(snap, player)
		if err != nil {
			return nil, err
		}
		out = append(out, thing)
	}
	if err := it.Err(); err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning players of %s", relation)
	}
	return out, nil
}

// RelationsPlayedBy returns the relations in which player plays roleType.
func (m *ThingManager) RelationsPlayedBy(snap Snapshot, player vertex.Vertex, roleType concept.RoleType) ([]concept.Thing, error) {
	pb := player.Bytes()
	prefix := make([]byte, 1+len(pb)+4)
	prefix[0] = prefixLinksRev
	copy(prefix[1:], pb[:])
	putUint32(prefix[1+len(pb):], roleType.ID())

	it, err := snap.Iterate(prefix)
	if err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning relations played by %s", player)
	}
	defer it.Close()

	var out []concept.Thing
	for it.Next() {
		key := it.Key()
		rel := decodeVertexBytes(key[len(key)-13:])
		thing, err := m.ThingOf(snap, rel)
		if err != nil {
			return nil, err
		}
		out = append(out, thing)
	}
	if err := it.Err(); err != nil {
		return nil, typedberr.NewConceptRead(err, "scanning relations played by %s", player)
	}
	return out, nil
}

// PutEntity creates a new entity instance of t.
func (m *ThingManager) PutEntity(snap WritableSnapshot, t concept.EntityType) (concept.Thing, error) {
	v := m.generator.TakeEntity(t.ID())
	return m.putTyped(snap, v, t)
}

// PutRelation creates a new relation instance of t.
func (m *ThingManager) PutRelation(snap WritableSnapshot, t concept.RelationType) (concept.Thing, error) {
	v := m.generator.TakeRelation(t.ID())
	return m.putTyped(snap, v, t)
}

// PutAttribute creates (or, if an attribute with this type and value already
// exists, returns) an attribute instance, matching the value-equality-as-
// identity semantics attribute instances have.
func (m *ThingManager) PutAttribute(snap WritableSnapshot, t concept.AttributeType, val concept.Value) (concept.Thing, error) {
	if existing, ok, err := m.findAttributeByValue(snap, t, val); err != nil {
		return concept.Thing{}, err
	} else if ok {
		return existing, nil
	}
	v := m.generator.TakeAttribute(t.ID())
	if _, err := m.putTyped(snap, v, t); err != nil {
		return concept.Thing{}, err
	}
	if err := snap.Put(attributeValueKey(v), encodeValue(val)); err != nil {
		return concept.Thing{}, typedberr.NewConceptWrite(err, "writing value of %s", v)
	}
	return concept.NewAttribute(v, t, val), nil
}

func (m *ThingManager) findAttributeByValue(snap Snapshot, t concept.AttributeType, val concept.Value) (concept.Thing, bool, error) {
	existing, err := m.InstancesOfType(snap, t)
	if err != nil {
		return concept.Thing{}, false, err
	}
	for _, thing := range existing {
		if thing.Value().Equal(val) {
			return thing, true, nil
		}
	}
	return concept.Thing{}, false, nil
}

func (m *ThingManager) putTyped(snap WritableSnapshot, v vertex.Vertex, t concept.SchemaType) (concept.Thing, error) {
	if err := snap.Put(typeOfKey(v), encodeTypeOf(t)); err != nil {
		return concept.Thing{}, typedberr.NewConceptWrite(err, "writing type of %s", v)
	}
	id := schemaTypeID(t)
	if err := snap.Put(instanceOfKey(t.Kind(), id, v), []byte{}); err != nil {
		return concept.Thing{}, typedberr.NewConceptWrite(err, "indexing instance %s", v)
	}
	switch t.Kind() {
	case concept.KindEntity:
		return concept.NewEntity(v, t.(concept.EntityType)), nil
	case concept.KindRelation:
		return concept.NewRelation(v, t.(concept.RelationType)), nil
	default:
		// Attribute things carry a value the caller attaches separately
		// (PutAttribute); this zero Thing is never observed by callers.
		return concept.Thing{}, nil
	}
}

// PutHas records an ownership edge between owner and attribute, after
// asserting owner is an object (entity or relation) and attribute is an
// attribute.
func (m *ThingManager) PutHas(snap WritableSnapshot, owner, attribute vertex.Vertex) error {
	if owner.Prefix == vertex.PrefixAttribute {
		return typedberr.NewTypeMismatch("has owner %s is an attribute, not an object", owner)
	}
	if attribute.Prefix != vertex.PrefixAttribute {
		return typedberr.NewTypeMismatch("has attribute %s is not an attribute", attribute)
	}
	if err := snap.Put(hasForwardKey(owner, attribute), []byte{}); err != nil {
		return typedberr.NewConceptWrite(err, "writing has edge %s -> %s", owner, attribute)
	}
	if err := snap.Put(hasReverseKey(attribute, owner), []byte{}); err != nil {
		return typedberr.NewConceptWrite(err, "writing has edge %s -> %s", owner, attribute)
	}
	return nil
}

// PutLinks records a role-player edge between relation and player, after
// asserting schema admissibility: relation's type must relate roleType, and
// player's type must play roleType.
func (m *ThingManager) PutLinks(snap WritableSnapshot, relation vertex.Vertex, roleType concept.RoleType, player vertex.Vertex) error {
	relationType, err := m.TypeOf(snap, relation)
	if err != nil {
		return err
	}
	rt, ok := relationType.(concept.RelationType)
	if !ok {
		return typedberr.NewTypeMismatch("links relation %s is not a relation", relation)
	}
	if !rt.Relates(roleType) {
		return typedberr.NewTypeMismatch("relation type %s does not relate role %s", rt, roleType)
	}

	playerType, err := m.TypeOf(snap, player)
	if err != nil {
		return err
	}
	if !m.registry.Plays(playerType, roleType) {
		return typedberr.NewTypeMismatch("player %s's type %s does not play role %s", player, playerType, roleType)
	}

	if err := snap.Put(linksForwardKey(relation, roleType.ID(), player), []byte{}); err != nil {
		return typedberr.NewConceptWrite(err, "writing links edge %s -%s-> %s", relation, roleType, player)
	}
	if err := snap.Put(linksReverseKey(player, roleType.ID(), relation), []byte{}); err != nil {
		return typedberr.NewConceptWrite(err, "writing links edge %s -%s-> %s", relation, roleType, player)
	}
	return nil
}

func schemaTypeID(t concept.SchemaType) uint32 {
	switch tt := t.(type) {
	case concept.EntityType:
		return tt.ID()
	case concept.RelationType:
		return tt.ID()
	case concept.AttributeType:
		return tt.ID()
	case concept.RoleType:
		return tt.ID()
	default:
		return 0
	}
}
