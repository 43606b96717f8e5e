package compiler

import (
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/pattern"
	"github.com/wbrown/typedb-core/typeinfo"
	"github.com/wbrown/typedb-core/typedberr"
)

// MatchExecutable is a compiled, plan-ordered conjunction ready for the
// pattern executor: a constraint list in the order they must run, the type
// annotations that justified any optimiser rewrites, and the row schema the
// executor's output rows conform to.
type MatchExecutable struct {
	ID           ExecutableID
	Conjunction  pattern.Conjunction
	Annotations  *typeinfo.Annotations
	Schema       ir.RowSchema
	SelectedVars []ir.Variable // the subset of Schema's variables the caller asked to see
}

// OutputWidth is the number of columns every row this executable produces
// will have.
func (m *MatchExecutable) OutputWidth() int { return m.Schema.Width() }

// SelectedPositions resolves SelectedVars to their compiled positions, in
// the order SelectedVars was given.
func (m *MatchExecutable) SelectedPositions() []ir.VariablePosition {
	out := make([]ir.VariablePosition, 0, len(m.SelectedVars))
	for _, v := range m.SelectedVars {
		if pos, ok := m.Schema.PositionOf(v); ok {
			out = append(out, pos)
		}
	}
	return out
}

// InsertConceptKind distinguishes the three instance kinds an insert clause
// may instantiate.
type InsertConceptKind int

const (
	InsertEntity InsertConceptKind = iota
	InsertRelation
	InsertAttribute
)

// ValueSource names where an inserted attribute's value comes from: a
// literal baked into the executable, or a position already bound by the
// preceding match row.
type ValueSource struct {
	Constant   *concept.Value
	FromInput  bool
	InputPos   ir.VariablePosition
}

// InsertConcept instructs the write executor to instantiate one new thing,
// binding it into the row at Position.
type InsertConcept struct {
	Position ir.VariablePosition
	Kind     InsertConceptKind
	Type     concept.SchemaType
	Value    ValueSource // meaningful only when Kind == InsertAttribute
}

// InsertConnectionKind distinguishes the two edge shapes an insert clause
// may create.
type InsertConnectionKind int

const (
	InsertHas InsertConnectionKind = iota
	InsertLinks
)

// InsertConnection instructs the write executor to create one edge between
// two already-positioned things in the row.
type InsertConnection struct {
	Kind      InsertConnectionKind
	Owner     ir.VariablePosition // Has
	Attribute ir.VariablePosition // Has
	Relation  ir.VariablePosition // Links
	Role      concept.RoleType    // Links
	Player    ir.VariablePosition // Links
}

// InsertExecutable is a compiled insert clause: the new things to
// instantiate and the edges to connect them with, expressed purely in
// terms of row positions so it can run against any row matching its
// referenced positions.
type InsertExecutable struct {
	ID          ExecutableID
	Schema      ir.RowSchema
	Concepts    []InsertConcept
	Connections []InsertConnection
}

// OutputWidth is the row width after this insert's new concept positions
// are accounted for.
func (ins *InsertExecutable) OutputWidth() int { return ins.Schema.Width() }

// ReferencedInputPositions returns every position this executable reads
// from the incoming row without writing it: connection endpoints that are
// not themselves newly inserted, and value sources drawn from bound input.
// Capacity is sized as 3*len(connections)+len(concepts): each connection
// references up to its own three fields worst-case, and each concept may
// reference one input position for its value.
func (ins *InsertExecutable) ReferencedInputPositions() []ir.VariablePosition {
	inserted := make(map[ir.VariablePosition]struct{}, len(ins.Concepts))
	for _, c := range ins.Concepts {
		inserted[c.Position] = struct{}{}
	}
	out := make([]ir.VariablePosition, 0, 3*len(ins.Connections)+len(ins.Concepts))
	add := func(pos ir.VariablePosition) {
		if _, isNew := inserted[pos]; !isNew {
			out = append(out, pos)
		}
	}
	for _, c := range ins.Connections {
		switch c.Kind {
		case InsertHas:
			add(c.Owner)
			add(c.Attribute)
		case InsertLinks:
			add(c.Relation)
			add(c.Player)
		}
	}
	for _, c := range ins.Concepts {
		if c.Kind == InsertAttribute && c.Value.FromInput {
			add(c.Value.InputPos)
		}
	}
	return out
}

// InsertedPositions returns the positions this executable binds fresh
// (newly created things), in Concepts order.
func (ins *InsertExecutable) InsertedPositions() []ir.VariablePosition {
	out := make([]ir.VariablePosition, len(ins.Concepts))
	for i, c := range ins.Concepts {
		out[i] = c.Position
	}
	return out
}

// PutExecutable implements match-or-insert semantics: Match looks for an
// existing row satisfying the pattern; if none exists, Insert creates the
// missing concepts and connections.
type PutExecutable struct {
	ID     ExecutableID
	Match  *MatchExecutable
	Insert *InsertExecutable
}

// NewPutExecutable builds a PutExecutable, checking that match and insert
// agree on row schema width and, for every one of the match's selected
// variables, that insert binds the same variable at the same position. A
// mismatch is always a compiler bug worth surfacing rather than asserting
// away.
func NewPutExecutable(match *MatchExecutable, insert *InsertExecutable) (*PutExecutable, error) {
	if match.OutputWidth() != insert.OutputWidth() {
		return nil, typedberr.NewPlanInvalid(
			"put executable schema mismatch: match width %d, insert width %d",
			match.OutputWidth(), insert.OutputWidth())
	}
	for _, v := range match.SelectedVars {
		pos, ok := match.Schema.PositionOf(v)
		if !ok {
			continue
		}
		insertVar, ok := slotVariableAt(insert.Schema, pos)
		if !ok || insertVar != v {
			return nil, typedberr.NewPlanInvalid(
				"put executable schema mismatch at %s: match binds %s, insert binds %s",
				pos, v, insertVar)
		}
	}
	return &PutExecutable{ID: NewExecutableID(), Match: match, Insert: insert}, nil
}

// slotVariableAt returns the variable bound at pos in schema, if any.
func slotVariableAt(schema ir.RowSchema, pos ir.VariablePosition) (ir.Variable, bool) {
	for _, slot := range schema.Slots {
		if slot.Position == pos {
			return slot.Name, true
		}
	}
	return ir.Variable{}, false
}

// OutputRowMapping returns the row schema every row produced by this put
// (whether found by Match or constructed by Insert) conforms to.
func (p *PutExecutable) OutputRowMapping() ir.RowSchema { return p.Match.Schema }

// OutputWidth is the number of columns in every produced row.
func (p *PutExecutable) OutputWidth() int { return p.Match.OutputWidth() }

// ReferencedInputPositions delegates to the insert half: the positions a
// Put's insert path needs already bound when Match finds no row.
func (p *PutExecutable) ReferencedInputPositions() []ir.VariablePosition {
	return p.Insert.ReferencedInputPositions()
}

// InsertedPositions delegates to the insert half.
func (p *PutExecutable) InsertedPositions() []ir.VariablePosition {
	return p.Insert.InsertedPositions()
}
