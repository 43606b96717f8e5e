package storage

import (
	"encoding/binary"
	"math"

	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/concept/vertex"
)

// Key prefixes. One byte tags the record kind; each prefix is its own
// logical index over the same underlying key-value store.
const (
	prefixTypeOf       byte = 'T' // vertex -> (kind, typeID)
	prefixAttributeVal byte = 'V' // attribute vertex -> encoded Value
	prefixHasFwd       byte = 'H' // owner vertex, attribute vertex -> ()
	prefixHasRev       byte = 'h' // attribute vertex, owner vertex -> ()
	prefixLinksFwd     byte = 'L' // relation vertex, roleID, player vertex -> ()
	prefixLinksRev     byte = 'l' // player vertex, roleID, relation vertex -> ()
	prefixInstanceOf   byte = 'I' // kind, typeID, vertex -> ()
	prefixRelIndexOK   byte = 'x' // kind markers for relation-index availability
)

func vkey(prefix byte, v vertex.Vertex) []byte {
	b := v.Bytes()
	out := make([]byte, 1+len(b))
	out[0] = prefix
	copy(out[1:], b[:])
	return out
}

func putUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

func typeOfKey(v vertex.Vertex) []byte { return vkey(prefixTypeOf, v) }

func encodeTypeOf(t concept.SchemaType) []byte {
	out := make([]byte, 5)
	out[0] = byte(t.Kind())
	id := uint32(0)
	switch tt := t.(type) {
	case concept.EntityType:
		id = tt.ID()
	case concept.RelationType:
		id = tt.ID()
	case concept.AttributeType:
		id = tt.ID()
	case concept.RoleType:
		id = tt.ID()
	}
	putUint32(out[1:], id)
	return out
}

func decodeTypeOf(reg *concept.TypeRegistry, raw []byte) (concept.SchemaType, bool) {
	if len(raw) != 5 {
		return nil, false
	}
	kind := concept.Kind(raw[0])
	id := binary.BigEndian.Uint32(raw[1:])
	return reg.TypeByID(kind, id)
}

func attributeValueKey(v vertex.Vertex) []byte { return vkey(prefixAttributeVal, v) }

func encodeValue(val concept.Value) []byte {
	out := make([]byte, 1)
	out[0] = byte(val.Type())
	switch val.Type() {
	case concept.ValueTypeBoolean:
		b := byte(0)
		if val.AsBoolean() {
			b = 1
		}
		out = append(out, b)
	case concept.ValueTypeLong:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(val.AsLong()))
		out = append(out, buf...)
	case concept.ValueTypeDouble:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(val.AsDouble()))
		out = append(out, buf...)
	case concept.ValueTypeString:
		out = append(out, []byte(val.AsString())...)
	}
	return out
}

func decodeValue(raw []byte) concept.Value {
	if len(raw) == 0 {
		return concept.Value{}
	}
	switch concept.ValueType(raw[0]) {
	case concept.ValueTypeBoolean:
		return concept.Boolean(raw[1] == 1)
	case concept.ValueTypeLong:
		return concept.Long(int64(binary.BigEndian.Uint64(raw[1:])))
	case concept.ValueTypeDouble:
		return concept.Double(math.Float64frombits(binary.BigEndian.Uint64(raw[1:])))
	case concept.ValueTypeString:
		return concept.String(string(raw[1:]))
	default:
		return concept.Value{}
	}
}

func hasForwardKey(owner, attribute vertex.Vertex) []byte {
	return concatKey(prefixHasFwd, owner, attribute)
}

func hasReverseKey(attribute, owner vertex.Vertex) []byte {
	return concatKey(prefixHasRev, attribute, owner)
}

func linksForwardKey(relation vertex.Vertex, roleID uint32, player vertex.Vertex) []byte {
	rb := relation.Bytes()
	pb := player.Bytes()
	out := make([]byte, 1+len(rb)+4+len(pb))
	out[0] = prefixLinksFwd
	copy(out[1:], rb[:])
	putUint32(out[1+len(rb):], roleID)
	copy(out[1+len(rb)+4:], pb[:])
	return out
}

func linksReverseKey(player vertex.Vertex, roleID uint32, relation vertex.Vertex) []byte {
	pb := player.Bytes()
	rb := relation.Bytes()
	out := make([]byte, 1+len(pb)+4+len(rb))
	out[0] = prefixLinksRev
	copy(out[1:], pb[:])
	putUint32(out[1+len(pb):], roleID)
	copy(out[1+len(pb)+4:], rb[:])
	return out
}

func instanceOfPrefix(kind concept.Kind, typeID uint32) []byte {
	out := make([]byte, 1+1+4)
	out[0] = prefixInstanceOf
	out[1] = byte(kind)
	putUint32(out[2:], typeID)
	return out
}

func instanceOfKey(kind concept.Kind, typeID uint32, v vertex.Vertex) []byte {
	prefix := instanceOfPrefix(kind, typeID)
	vb := v.Bytes()
	out := make([]byte, len(prefix)+len(vb))
	copy(out, prefix)
	copy(out[len(prefix):], vb[:])
	return out
}

func concatKey(prefix byte, a, b vertex.Vertex) []byte {
	ab, bb := a.Bytes(), b.Bytes()
	out := make([]byte, 1+len(ab)+len(bb))
	out[0] = prefix
	copy(out[1:], ab[:])
	copy(out[1+len(ab):], bb[:])
	return out
}

func decodeVertexBytes(raw []byte) vertex.Vertex {
	typeID := binary.BigEndian.Uint32(raw[1:5])
	seq := binary.BigEndian.Uint64(raw[5:13])
	return vertex.Vertex{Prefix: vertex.Prefix(raw[0]), TypeID: typeID, Sequence: seq}
}

func relationIndexKey(relationType uint32) []byte {
	out := make([]byte, 1+4)
	out[0] = prefixRelIndexOK
	putUint32(out[1:], relationType)
	return out
}
