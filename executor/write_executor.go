package executor

import (
	"context"

	"github.com/wbrown/typedb-core/compiler"
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/concept/vertex"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/storage"
	"github.com/wbrown/typedb-core/typedberr"
)

// WriteExecutor runs compiled Insert and Put executables against a
// writable snapshot, applying each executable's batch of changes inside
// the caller's storage transaction.
type WriteExecutor struct {
	tm *storage.ThingManager
}

// NewWriteExecutor builds a WriteExecutor bound to a ThingManager.
func NewWriteExecutor(tm *storage.ThingManager) *WriteExecutor {
	return &WriteExecutor{tm: tm}
}

// ExecuteInsert runs one InsertExecutable against input (a row already
// bound by a preceding match stage, or an empty row for an unconditional
// insert), returning the row extended with the newly created positions.
func (w *WriteExecutor) ExecuteInsert(snap storage.WritableSnapshot, exec *compiler.InsertExecutable, input ir.Row) (ir.Row, error) {
	row := make(ir.Row, exec.OutputWidth())
	copy(row, input)

	for _, c := range exec.Concepts {
		thing, err := w.instantiate(snap, c, row)
		if err != nil {
			return nil, err
		}
		row[c.Position] = ir.ThingBinding(thing)
	}

	for _, c := range exec.Connections {
		switch c.Kind {
		case compiler.InsertHas:
			owner, err := rowThingVertex(row, c.Owner)
			if err != nil {
				return nil, err
			}
			attribute, err := rowThingVertex(row, c.Attribute)
			if err != nil {
				return nil, err
			}
			if err := w.tm.PutHas(snap, owner, attribute); err != nil {
				return nil, err
			}
		case compiler.InsertLinks:
			relation, err := rowThingVertex(row, c.Relation)
			if err != nil {
				return nil, err
			}
			player, err := rowThingVertex(row, c.Player)
			if err != nil {
				return nil, err
			}
			if err := w.tm.PutLinks(snap, relation, c.Role, player); err != nil {
				return nil, err
			}
		}
	}
	return row, nil
}

func (w *WriteExecutor) instantiate(snap storage.WritableSnapshot, c compiler.InsertConcept, row ir.Row) (concept.Thing, error) {
	switch c.Kind {
	case compiler.InsertEntity:
		et, ok := c.Type.(concept.EntityType)
		if !ok {
			return concept.Thing{}, typedberr.NewPlanInvalid("insert concept at %s is not an entity type", c.Position)
		}
		return w.tm.PutEntity(snap, et)
	case compiler.InsertRelation:
		rt, ok := c.Type.(concept.RelationType)
		if !ok {
			return concept.Thing{}, typedberr.NewPlanInvalid("insert concept at %s is not a relation type", c.Position)
		}
		return w.tm.PutRelation(snap, rt)
	case compiler.InsertAttribute:
		at, ok := c.Type.(concept.AttributeType)
		if !ok {
			return concept.Thing{}, typedberr.NewPlanInvalid("insert concept at %s is not an attribute type", c.Position)
		}
		val, err := resolveValue(c.Value, row)
		if err != nil {
			return concept.Thing{}, err
		}
		return w.tm.PutAttribute(snap, at, val)
	default:
		return concept.Thing{}, typedberr.NewPlanInvalid("unknown insert concept kind")
	}
}

func resolveValue(src compiler.ValueSource, row ir.Row) (concept.Value, error) {
	if src.Constant != nil {
		return *src.Constant, nil
	}
	if src.FromInput {
		if int(src.InputPos) >= len(row) || !row[src.InputPos].Bound {
			return concept.Value{}, typedberr.NewPlanInvalid("insert value source position %s is not bound", src.InputPos)
		}
		return bindingValue(row[src.InputPos])
	}
	return concept.Value{}, typedberr.NewPlanInvalid("insert value source has neither constant nor input position")
}

func rowThingVertex(row ir.Row, pos ir.VariablePosition) (vertex.Vertex, error) {
	if int(pos) >= len(row) || !row[pos].Bound {
		return vertex.Vertex{}, typedberr.NewPlanInvalid("insert connection references unbound position %s", pos)
	}
	b := row[pos]
	if b.Kind != ir.BindingThing {
		return vertex.Vertex{}, typedberr.NewTypeMismatch("insert connection position %s is not a thing", pos)
	}
	return b.Thing.Vertex(), nil
}

// ExecutePut implements match-or-insert: it seeds the match half with the
// caller's outer row, and if no existing row satisfies the pattern, runs
// the insert half to create one. Exactly one row is returned per call:
// when several existing rows match, only the first in plan order is
// returned and the rest are not.
func (w *WriteExecutor) ExecutePut(ctx context.Context, snap storage.WritableSnapshot, exec *compiler.PutExecutable, outer ir.Row) (ir.Row, error) {
	pe := NewPatternExecutorSeeded(exec.Match, snap, w.tm, outer)
	defer pe.Close()

	if pe.Advance(ctx) {
		return pe.Row().Clone(), nil
	}
	if err := pe.Err(); err != nil {
		return nil, err
	}

	input := make(ir.Row, exec.Match.OutputWidth())
	copy(input, outer)
	return w.ExecuteInsert(snap, exec.Insert, input)
}
