package storage

import (
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/typedberr"
)

// TypeManager answers schema-level questions the static optimiser needs
// while deciding rewrites, independent of any particular row or instance.
// It is constructed already bound to a snapshot/registry, matching how the
// compiler's TypeManager collaborator is described as independent from
// per-row instance traversal.
type TypeManager struct {
	registry *concept.TypeRegistry
	snapshot Snapshot
}

// NewTypeManager binds a TypeManager to a registry and a read snapshot.
func NewTypeManager(registry *concept.TypeRegistry, snapshot Snapshot) *TypeManager {
	return &TypeManager{registry: registry, snapshot: snapshot}
}

// RelationIndexAvailable reports whether a relation index has been built
// for relationType, which the R2 rewrite requires before it may replace a
// pair of Links constraints with a RelationIndexLookup. A schema is free to
// decline building the index for very high-arity or rarely-traversed
// relation types; absence must never silently change query results, only
// which plan computes them.
func (m *TypeManager) RelationIndexAvailable(relationType concept.RelationType) (bool, error) {
	_, ok, err := m.snapshot.Get(relationIndexKey(relationType.ID()))
	if err != nil {
		return false, typedberr.NewStaticOptimiserRead(err, "checking relation index for %s", relationType)
	}
	return ok, nil
}

// MarkRelationIndexAvailable records that relationType's relation index has
// been built. Schema setup (or, in this simplified implementation, a
// maintenance pass the caller runs once after writes) calls this.
func (m *TypeManager) MarkRelationIndexAvailable(snap WritableSnapshot, relationType concept.RelationType) error {
	if err := snap.Put(relationIndexKey(relationType.ID()), []byte{1}); err != nil {
		return typedberr.NewConceptWrite(err, "marking relation index available for %s", relationType)
	}
	return nil
}

// Registry returns the bound type registry, for components that need to
// resolve type handles without going through storage (e.g. role-type
// intersection checks during optimisation).
func (m *TypeManager) Registry() *concept.TypeRegistry { return m.registry }
