package concept

import "fmt"

// Kind distinguishes the four schema type categories: Entity, Relation,
// Attribute, Role.
type Kind int

const (
	KindEntity Kind = iota
	KindRelation
	KindAttribute
	KindRole
)

func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindRelation:
		return "relation"
	case KindAttribute:
		return "attribute"
	case KindRole:
		return "role"
	default:
		return "unknown"
	}
}

// typeID is an index into a TypeRegistry's arena, scoped to one Kind.
type typeID int

// typeRecord is the arena-resident node of the type hierarchy DAG. Storing
// supertype/subtype links as indices into a flat slice (rather than as
// pointers between heap-allocated nodes) avoids the cross-owning reference
// cycles a sub/super graph would otherwise create, and keeps the whole
// hierarchy alive and freeable as one allocation.
type typeRecord struct {
	kind               Kind
	label              string
	valueType          ValueType // meaningful only for KindAttribute
	isRoot             bool
	supertype          typeID // -1 if none
	supertypes         []typeID
	subtypesDeclared   []typeID
	subtypesTransitive []typeID
	relates            []typeID // role type ids; meaningful only for KindRelation
	plays              []typeID // role type ids; meaningful for KindEntity/KindRelation/KindAttribute
}

const noType typeID = -1

// TypeRegistry is the arena holding every schema type known to a database.
// It is the single owner of the sub/super DAG; SchemaType handles are thin,
// comparable references back into it (reg, id) pairs, so they remain valid
// Go map keys even as the hierarchy is extended.
type TypeRegistry struct {
	records map[Kind][]typeRecord
	byLabel map[Kind]map[string]typeID
}

// NewTypeRegistry builds an empty registry seeded with one always-present
// root type per kind (entity, relation, attribute, role), each at ID 0 with
// an empty label.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		records: make(map[Kind][]typeRecord),
		byLabel: make(map[Kind]map[string]typeID),
	}
	for _, k := range []Kind{KindEntity, KindRelation, KindAttribute, KindRole} {
		r.records[k] = nil
		r.byLabel[k] = make(map[string]typeID)
		r.insert(k, "", true, noType)
	}
	return r
}

func (r *TypeRegistry) insert(kind Kind, label string, isRoot bool, supertype typeID) typeID {
	id := typeID(len(r.records[kind]))
	rec := typeRecord{kind: kind, label: label, isRoot: isRoot, supertype: supertype}
	if supertype != noType {
		super := r.records[kind][supertype]
		rec.supertypes = append(append([]typeID{}, super.supertypes...), supertype)
	}
	r.records[kind] = append(r.records[kind], rec)
	if label != "" {
		r.byLabel[kind][label] = id
	}
	if supertype != noType {
		r.records[kind][supertype].subtypesDeclared = append(r.records[kind][supertype].subtypesDeclared, id)
		for _, ancestor := range append([]typeID{supertype}, rec.supertypes...) {
			r.records[kind][ancestor].subtypesTransitive = append(r.records[kind][ancestor].subtypesTransitive, id)
		}
	}
	return id
}

// DefineEntityType adds a new entity type as a direct subtype of super
// (pass the zero value EntityType{} for a type with no supertype; it is not
// recorded as a subtype of the root).
func (r *TypeRegistry) DefineEntityType(label string, super EntityType) EntityType {
	sup := noType
	if super.reg != nil {
		sup = super.id
	}
	return EntityType{reg: r, id: r.insert(KindEntity, label, false, sup)}
}

// DefineRelationType adds a new relation type.
func (r *TypeRegistry) DefineRelationType(label string, super RelationType) RelationType {
	sup := noType
	if super.reg != nil {
		sup = super.id
	}
	return RelationType{reg: r, id: r.insert(KindRelation, label, false, sup)}
}

// DefineAttributeType adds a new attribute type with the given value type.
func (r *TypeRegistry) DefineAttributeType(label string, valueType ValueType, super AttributeType) AttributeType {
	sup := noType
	if super.reg != nil {
		sup = super.id
	}
	id := r.insert(KindAttribute, label, false, sup)
	rec := r.records[KindAttribute][id]
	rec.valueType = valueType
	r.records[KindAttribute][id] = rec
	return AttributeType{reg: r, id: id}
}

// DefineRoleType adds a role type scoped to a relation type's interface.
func (r *TypeRegistry) DefineRoleType(label string, super RoleType) RoleType {
	sup := noType
	if super.reg != nil {
		sup = super.id
	}
	return RoleType{reg: r, id: r.insert(KindRole, label, false, sup)}
}

// DefineRelates declares that relationType relates role: instances of
// relationType (and its subtypes) may link a player into role.
func (r *TypeRegistry) DefineRelates(relationType RelationType, role RoleType) {
	rec := r.records[KindRelation][relationType.id]
	rec.relates = append(rec.relates, role.id)
	r.records[KindRelation][relationType.id] = rec
}

// DefinePlays declares that instances of playerType may play role. playerType
// must be an EntityType, RelationType, or AttributeType; any other kind is a
// no-op.
func (r *TypeRegistry) DefinePlays(playerType SchemaType, role RoleType) {
	kind, id, ok := kindAndID(playerType)
	if !ok {
		return
	}
	rec := r.records[kind][id]
	rec.plays = append(rec.plays, role.id)
	r.records[kind][id] = rec
}

// Relates reports whether relationType (or a supertype of it) relates role
// (or a subtype of it).
func (r *TypeRegistry) Relates(relationType RelationType, role RoleType) bool {
	return r.hasCapability(KindRelation, relationType.id, role.id, func(rec typeRecord) []typeID { return rec.relates })
}

// Plays reports whether playerType (or a supertype of it) plays role (or a
// subtype of it).
func (r *TypeRegistry) Plays(playerType SchemaType, role RoleType) bool {
	kind, id, ok := kindAndID(playerType)
	if !ok {
		return false
	}
	return r.hasCapability(kind, id, role.id, func(rec typeRecord) []typeID { return rec.plays })
}

func kindAndID(t SchemaType) (Kind, typeID, bool) {
	switch tt := t.(type) {
	case EntityType:
		return KindEntity, tt.id, true
	case RelationType:
		return KindRelation, tt.id, true
	case AttributeType:
		return KindAttribute, tt.id, true
	default:
		return 0, 0, false
	}
}

// hasCapability reports whether (kind, id) or any of its supertypes declares
// roleID (or a subtype of roleID) via the capability list get selects.
func (r *TypeRegistry) hasCapability(kind Kind, id typeID, roleID typeID, get func(typeRecord) []typeID) bool {
	rec := r.record(kind, id)
	ids := append([]typeID{id}, rec.supertypes...)
	for _, tid := range ids {
		for _, declared := range get(r.record(kind, tid)) {
			if declared == roleID || IsSubtypeOf(r, KindRole, roleID, declared) {
				return true
			}
		}
	}
	return false
}

func (r *TypeRegistry) labelOf(kind Kind, id typeID) string { return r.records[kind][id].label }

func (r *TypeRegistry) record(kind Kind, id typeID) typeRecord { return r.records[kind][id] }

// SchemaType is the capability every type handle implements: identity,
// label, sub-typing queries. Concrete kinds (EntityType, RelationType,
// AttributeType, RoleType) add kind-specific accessors.
type SchemaType interface {
	Kind() Kind
	Label() string
	IsRoot() bool
	fmt.Stringer
}

// EntityType is a handle into a TypeRegistry's entity arena.
type EntityType struct {
	reg *TypeRegistry
	id  typeID
}

func (t EntityType) Kind() Kind    { return KindEntity }
func (t EntityType) Label() string { return t.reg.labelOf(KindEntity, t.id) }
func (t EntityType) IsRoot() bool  { return t.reg.record(KindEntity, t.id).isRoot }
func (t EntityType) ID() uint32    { return uint32(t.id) }
func (t EntityType) String() string {
	return fmt.Sprintf("entity-type:%s", t.Label())
}

// Subtypes returns declared direct subtypes.
func (t EntityType) Subtypes() []EntityType {
	rec := t.reg.record(KindEntity, t.id)
	out := make([]EntityType, len(rec.subtypesDeclared))
	for i, id := range rec.subtypesDeclared {
		out[i] = EntityType{reg: t.reg, id: id}
	}
	return out
}

// Plays reports whether t (or a supertype of it) plays role.
func (t EntityType) Plays(role RoleType) bool { return t.reg.Plays(t, role) }

// RelationType is a handle into a TypeRegistry's relation arena.
type RelationType struct {
	reg *TypeRegistry
	id  typeID
}

func (t RelationType) Kind() Kind    { return KindRelation }
func (t RelationType) Label() string { return t.reg.labelOf(KindRelation, t.id) }
func (t RelationType) IsRoot() bool  { return t.reg.record(KindRelation, t.id).isRoot }
func (t RelationType) ID() uint32    { return uint32(t.id) }
func (t RelationType) String() string {
	return fmt.Sprintf("relation-type:%s", t.Label())
}

// Relates reports whether t (or a supertype of it) relates role.
func (t RelationType) Relates(role RoleType) bool { return t.reg.Relates(t, role) }

// Plays reports whether t (or a supertype of it) plays role.
func (t RelationType) Plays(role RoleType) bool { return t.reg.Plays(t, role) }

// AttributeType is a handle into a TypeRegistry's attribute arena.
type AttributeType struct {
	reg *TypeRegistry
	id  typeID
}

func (t AttributeType) Kind() Kind      { return KindAttribute }
func (t AttributeType) Label() string   { return t.reg.labelOf(KindAttribute, t.id) }
func (t AttributeType) IsRoot() bool    { return t.reg.record(KindAttribute, t.id).isRoot }
func (t AttributeType) ID() uint32      { return uint32(t.id) }
func (t AttributeType) ValueType() ValueType { return t.reg.record(KindAttribute, t.id).valueType }
func (t AttributeType) String() string {
	return fmt.Sprintf("attribute-type:%s", t.Label())
}

// RoleType is a handle into a TypeRegistry's role arena.
type RoleType struct {
	reg *TypeRegistry
	id  typeID
}

func (t RoleType) Kind() Kind    { return KindRole }
func (t RoleType) Label() string { return t.reg.labelOf(KindRole, t.id) }
func (t RoleType) IsRoot() bool  { return t.reg.record(KindRole, t.id).isRoot }
func (t RoleType) ID() uint32    { return uint32(t.id) }
func (t RoleType) String() string {
	return fmt.Sprintf("role-type:%s", t.Label())
}

// TypeByID reconstructs a type handle from its kind and numeric ID, for
// decoding storage-level type references back into SchemaType handles.
// ok is false if no type with that ID has been defined under kind.
func (r *TypeRegistry) TypeByID(kind Kind, id uint32) (SchemaType, bool) {
	tid := typeID(id)
	if int(tid) < 0 || int(tid) >= len(r.records[kind]) {
		return nil, false
	}
	switch kind {
	case KindEntity:
		return EntityType{reg: r, id: tid}, true
	case KindRelation:
		return RelationType{reg: r, id: tid}, true
	case KindAttribute:
		return AttributeType{reg: r, id: tid}, true
	case KindRole:
		return RoleType{reg: r, id: tid}, true
	default:
		return nil, false
	}
}

// IsSubtypeOf reports whether sub is sub (or equal to) super, by scanning
// super's transitive-subtypes list. sub and super must be the same Kind.
func IsSubtypeOf(reg *TypeRegistry, kind Kind, sub, super typeID) bool {
	if sub == super {
		return true
	}
	for _, id := range reg.record(kind, super).subtypesTransitive {
		if id == sub {
			return true
		}
	}
	return false
}

// RoleTypeIntersects reports whether two role-type sets share at least one
// role type, accounting for subtyping: a is considered to intersect b if
// any element of a is equal to, a subtype of, or a supertype of any element
// of b. The static optimiser's redundant-LinksDeduplication pruning does
// not call it: that rule compares annotated role-type sets by exact
// membership (ir.TypeSet.Intersects).
func RoleTypeIntersects(reg *TypeRegistry, a, b []RoleType) bool {
	for _, x := range a {
		for _, y := range b {
			if x.id == y.id {
				return true
			}
			if IsSubtypeOf(reg, KindRole, x.id, y.id) || IsSubtypeOf(reg, KindRole, y.id, x.id) {
				return true
			}
		}
	}
	return false
}
