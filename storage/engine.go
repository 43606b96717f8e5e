package storage

import (
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/concept/vertex"
)

// Engine is the top-level handle a caller opens once per database: it owns
// the BadgerDB instance, the in-memory type registry, and the vertex
// generator, and hands out read and write snapshots bound to them.
type Engine struct {
	badger    *BadgerDatabase
	Registry  *concept.TypeRegistry
	Generator *vertex.Generator
	Things    *ThingManager
}

// OpenEngine opens (or creates) a BadgerDB-backed database at path, bound
// to the given schema registry. Pass a fresh concept.NewTypeRegistry() for
// a new database, or one reconstructed from persisted schema metadata when
// reopening an existing one. The vertex generator's counters are recovered
// from the highest sequence number already stored per type, so reopening a
// populated database never reissues an identity already in use.
func OpenEngine(path string, registry *concept.TypeRegistry) (*Engine, error) {
	db, err := OpenBadgerDatabase(path)
	if err != nil {
		return nil, err
	}
	generator := vertex.NewGenerator(1 << 16)
	if err := recoverGeneratorCounters(db, generator); err != nil {
		db.Close()
		return nil, err
	}
	return &Engine{
		badger:    db,
		Registry:  registry,
		Generator: generator,
		Things:    NewThingManager(registry, generator),
	}, nil
}

// recoverGeneratorCounters scans every recorded instance and advances the
// generator's per-(kind,type) counters past the highest sequence number
// already in use, so a freshly opened Generator never reissues a vertex
// identity that already exists in storage.
func recoverGeneratorCounters(db *BadgerDatabase, generator *vertex.Generator) error {
	snap := db.OpenSnapshot()
	defer snap.Close()

	it, err := snap.Iterate([]byte{prefixInstanceOf})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		key := it.Key()
		if len(key) < 19 {
			continue
		}
		v := decodeVertexBytes(key[6:19])
		generator.Load(v.Prefix, v.TypeID, v.Sequence)
	}
	return it.Err()
}

// OpenRead returns a read-only snapshot of current database state.
func (e *Engine) OpenRead() Snapshot { return e.badger.OpenSnapshot() }

// BeginWrite starts a new write transaction.
func (e *Engine) BeginWrite() WritableSnapshot { return e.badger.OpenWritableSnapshot() }

// Types returns a TypeManager bound to snap, for schema-level reads scoped
// to that snapshot's view of the database.
func (e *Engine) Types(snap Snapshot) *TypeManager { return NewTypeManager(e.Registry, snap) }

// Close closes the underlying BadgerDB handle.
func (e *Engine) Close() error { return e.badger.Close() }
