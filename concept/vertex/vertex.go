// Package vertex generates and represents the storage-level identities of
// things: monotonically increasing (kind, type, sequence) triples, minted
// from one atomic counter per (kind, type) pair.
package vertex

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Prefix tags which of the three instance kinds a Vertex belongs to.
type Prefix byte

const (
	PrefixEntity Prefix = iota
	PrefixRelation
	PrefixAttribute
)

func (p Prefix) String() string {
	switch p {
	case PrefixEntity:
		return "E"
	case PrefixRelation:
		return "R"
	case PrefixAttribute:
		return "A"
	default:
		return "?"
	}
}

// Vertex is the storage-level identity of one instance: its kind, the type
// it was created under, and a per-(kind,type) sequence number assigned at
// creation time. Two vertices are the same instance iff all three fields
// are equal.
type Vertex struct {
	Prefix   Prefix
	TypeID   uint32
	Sequence uint64
}

func (v Vertex) String() string {
	return fmt.Sprintf("%s:%d:%d", v.Prefix, v.TypeID, v.Sequence)
}

// Bytes renders a Vertex into a fixed-width, order-preserving key suffix
// suitable for use as (part of) a storage key.
func (v Vertex) Bytes() [13]byte {
	var b [13]byte
	b[0] = byte(v.Prefix)
	b[1] = byte(v.TypeID >> 24)
	b[2] = byte(v.TypeID >> 16)
	b[3] = byte(v.TypeID >> 8)
	b[4] = byte(v.TypeID)
	for i := 0; i < 8; i++ {
		b[5+i] = byte(v.Sequence >> (56 - 8*i))
	}
	return b
}

// Generator hands out fresh Vertex identities. It holds one atomic counter
// per (kind, typeID) pair, preallocated up to the capacity passed to
// NewGenerator; indexing past that capacity panics.
type Generator struct {
	entity    []atomic.Uint64
	relation  []atomic.Uint64
	attribute []atomic.Uint64

	// bootEpoch distinguishes vertices minted by this process incarnation
	// from any minted by a prior one, for diagnostic/log correlation; it
	// has no bearing on vertex equality or ordering.
	bootEpoch uuid.UUID
}

// NewGenerator creates a Generator with room for typeCapacity distinct
// types per kind. Sequence counters start at zero for a fresh database;
// use Load to resume from a prior maximum.
func NewGenerator(typeCapacity uint32) *Generator {
	return &Generator{
		entity:    make([]atomic.Uint64, typeCapacity),
		relation:  make([]atomic.Uint64, typeCapacity),
		attribute: make([]atomic.Uint64, typeCapacity),
		bootEpoch: uuid.New(),
	}
}

// BootEpoch identifies this Generator's process incarnation.
func (g *Generator) BootEpoch() uuid.UUID { return g.bootEpoch }

func (g *Generator) counterFor(prefix Prefix, typeID uint32) *atomic.Uint64 {
	switch prefix {
	case PrefixEntity:
		return &g.entity[typeID]
	case PrefixRelation:
		return &g.relation[typeID]
	case PrefixAttribute:
		return &g.attribute[typeID]
	default:
		panic("vertex: unknown prefix")
	}
}

// Take allocates the next Vertex for (prefix, typeID). Safe for concurrent
// use: each call is a single relaxed-equivalent atomic increment, no locks.
func (g *Generator) Take(prefix Prefix, typeID uint32) Vertex {
	seq := g.counterFor(prefix, typeID).Add(1) - 1
	return Vertex{Prefix: prefix, TypeID: typeID, Sequence: seq}
}

// TakeEntity allocates the next entity Vertex of the given type.
func (g *Generator) TakeEntity(typeID uint32) Vertex { return g.Take(PrefixEntity, typeID) }

// TakeRelation allocates the next relation Vertex of the given type.
func (g *Generator) TakeRelation(typeID uint32) Vertex { return g.Take(PrefixRelation, typeID) }

// TakeAttribute allocates the next attribute Vertex of the given type.
func (g *Generator) TakeAttribute(typeID uint32) Vertex { return g.Take(PrefixAttribute, typeID) }

// Load resumes a Generator's counters from the highest sequence number
// observed per type, as recovered from storage on database open.
func (g *Generator) Load(prefix Prefix, typeID uint32, maxSequenceSeen uint64) {
	c := g.counterFor(prefix, typeID)
	for {
		cur := c.Load()
		if maxSequenceSeen+1 <= cur {
			return
		}
		if c.CompareAndSwap(cur, maxSequenceSeen+1) {
			return
		}
	}
}
