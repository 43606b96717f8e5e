// Package executor runs compiled executables against a storage snapshot:
// pattern matching (row streaming), program composition, and the write
// pipeline for Insert/Put. Internal row expansion is a synchronous chain of
// expansion steps, one per constraint, rather than a goroutine-per-stage
// pipeline: the read path takes no locks and needs no concurrent stages, so
// a plain nested-loop join keeps behavior easy to reason about.
//
// Rows are computed eagerly into a buffer on the first Advance call, one
// step at a time over every partial row, but the eager pass halts at the
// first error and never discards the rows it had already finished
// computing. A row is finished once it has passed every step, so an error
// before the last step leaves no rows. Replaying that buffer afterwards gives
// the same observable contract a lazy row-at-a-time iterator would: rows
// stream out in plan order, no row is produced after the first error, and
// rows already returned remain valid once an error follows.
package executor

import (
	"context"

	"github.com/wbrown/typedb-core/compiler"
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/concept/vertex"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/pattern"
	"github.com/wbrown/typedb-core/storage"
	"github.com/wbrown/typedb-core/typedberr"
)

// partialRow is the executor's internal working row, keyed by source
// variable rather than compiled position: expansion steps bind and read
// variables directly, and the final projection step converts into the
// schema's positional ir.Row.
type partialRow map[ir.Variable]ir.Binding

func (r partialRow) clone() partialRow {
	out := make(partialRow, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

type stepFunc func(snap storage.Snapshot, tm *storage.ThingManager, row partialRow) ([]partialRow, error)

// PatternExecutor streams the rows satisfying one MatchExecutable's
// conjunction against a snapshot.
type PatternExecutor struct {
	executable *compiler.MatchExecutable
	snap       storage.Snapshot
	tm         *storage.ThingManager
	steps      []stepFunc

	seed partialRow

	computed bool
	rows     []ir.Row
	idx      int
	err      error
}

// NewPatternExecutor compiles the constraint list of executable into a
// step chain and prepares to run it against snap.
func NewPatternExecutor(executable *compiler.MatchExecutable, snap storage.Snapshot, tm *storage.ThingManager) *PatternExecutor {
	return &PatternExecutor{
		executable: executable,
		snap:       snap,
		tm:         tm,
		steps:      buildSteps(executable.Conjunction.Constraints),
	}
}

// NewPatternExecutorSeeded is like NewPatternExecutor, but seeds the initial
// row from input's already-bound positions (per executable.Schema). Used by
// the write pipeline's Put operation, where the match half must search for
// an existing row consistent with variables an outer row already bound.
func NewPatternExecutorSeeded(executable *compiler.MatchExecutable, snap storage.Snapshot, tm *storage.ThingManager, input ir.Row) *PatternExecutor {
	pe := NewPatternExecutor(executable, snap, tm)
	seed := make(partialRow, len(executable.Schema.Slots))
	for _, slot := range executable.Schema.Slots {
		if int(slot.Position) < len(input) && input[slot.Position].Bound {
			seed[slot.Name] = input[slot.Position]
		}
	}
	pe.seed = seed
	return pe
}

// Advance moves to the next row. It returns false once exhausted or once
// an error has occurred (check Err to distinguish the two); after it
// returns false, Row must not be called again.
func (e *PatternExecutor) Advance(ctx context.Context) bool {
	if !e.computed {
		e.compute(ctx)
		e.computed = true
	}
	if e.err != nil && e.idx >= len(e.rows) {
		return false
	}
	select {
	case <-ctx.Done():
		if e.idx >= len(e.rows) {
			e.err = typedberr.NewExecutionInterrupted(ctx.Err())
			return false
		}
	default:
	}
	if e.idx >= len(e.rows) {
		return false
	}
	e.idx++
	return true
}

// Row returns the current row. The returned Row borrows its backing slice
// from the executor's internal buffer; callers that need it to outlive the
// next Advance call must call Row().Clone().
func (e *PatternExecutor) Row() ir.Row {
	return e.rows[e.idx-1]
}

// Err returns the first error encountered, if any.
func (e *PatternExecutor) Err() error { return e.err }

// Close releases resources. PatternExecutor holds none of its own beyond
// the snapshot it was given, which the caller owns.
func (e *PatternExecutor) Close() error { return nil }

func (e *PatternExecutor) compute(ctx context.Context) {
	initial := partialRow{}
	if e.seed != nil {
		initial = e.seed
	}
	rows := []partialRow{initial}
	for i, step := range e.steps {
		if err := ctx.Err(); err != nil {
			// Steps i onwards have not run yet, so no row is finished.
			e.err = typedberr.NewExecutionInterrupted(err)
			return
		}
		last := i == len(e.steps)-1
		next := make([]partialRow, 0, len(rows))
		for _, r := range rows {
			expanded, err := step(e.snap, e.tm, r)
			if err != nil {
				if last {
					// Rows the final step already produced are finished.
					e.rows = e.project(next)
				}
				e.err = err
				return
			}
			next = append(next, expanded...)
		}
		rows = next
	}
	e.rows = e.project(rows)
}

func (e *PatternExecutor) project(rows []partialRow) []ir.Row {
	out := make([]ir.Row, len(rows))
	for i, r := range rows {
		row := make(ir.Row, e.executable.Schema.Width())
		for _, slot := range e.executable.Schema.Slots {
			row[slot.Position] = r[slot.Name]
		}
		out[i] = row
	}
	return out
}

func buildSteps(constraints []pattern.Constraint) []stepFunc {
	steps := make([]stepFunc, len(constraints))
	for i, c := range constraints {
		steps[i] = buildStep(c)
	}
	return steps
}

func buildStep(c pattern.Constraint) stepFunc {
	switch c := c.(type) {
	case pattern.Isa:
		return isaStep(c)
	case pattern.Has:
		return hasStep(c)
	case pattern.Links:
		return linksStep(c)
	case pattern.LinksDeduplication:
		return dedupStep(c)
	case pattern.Comparison:
		return comparisonStep(c)
	case pattern.RelationIndexLookup:
		return relationIndexStep(c)
	default:
		return func(storage.Snapshot, *storage.ThingManager, partialRow) ([]partialRow, error) {
			return nil, typedberr.NewPlanInvalid("unrecognised constraint %T", c)
		}
	}
}

func thingVertex(b ir.Binding) (vertex.Vertex, error) {
	if b.Kind != ir.BindingThing {
		return vertex.Vertex{}, typedberr.NewTypeMismatch("expected a thing binding, found a value")
	}
	return b.Thing.Vertex(), nil
}

func isaStep(c pattern.Isa) stepFunc {
	return func(snap storage.Snapshot, tm *storage.ThingManager, row partialRow) ([]partialRow, error) {
		if c.Type.IsVariable() {
			return nil, typedberr.NewPlanInvalid("isa with a variable type is not supported")
		}
		typ := c.Type.Constant
		if existing, bound := row[c.Thing]; bound {
			v, err := thingVertex(existing)
			if err != nil {
				return nil, err
			}
			actual, err := tm.TypeOf(snap, v)
			if err != nil {
				return nil, err
			}
			if !typesMatch(actual, typ) {
				return nil, nil
			}
			return []partialRow{row}, nil
		}
		things, err := tm.InstancesOfType(snap, typ)
		if err != nil {
			return nil, err
		}
		out := make([]partialRow, 0, len(things))
		for _, thing := range things {
			next := row.clone()
			next[c.Thing] = ir.ThingBinding(thing)
			out = append(out, next)
		}
		return out, nil
	}
}

func typesMatch(actual, expected concept.SchemaType) bool {
	return actual.Kind() == expected.Kind() && actual.Label() == expected.Label()
}

func hasStep(c pattern.Has) stepFunc {
	return func(snap storage.Snapshot, tm *storage.ThingManager, row partialRow) ([]partialRow, error) {
		ownerBinding, ownerBound := row[c.Owner]
		attrBinding, attrBound := row[c.Attribute]

		switch {
		case ownerBound && attrBound:
			ownerV, err := thingVertex(ownerBinding)
			if err != nil {
				return nil, err
			}
			attrV, err := thingVertex(attrBinding)
			if err != nil {
				return nil, err
			}
			owned, err := tm.Owns(snap, ownerV)
			if err != nil {
				return nil, err
			}
			for _, a := range owned {
				if a.Vertex() == attrV {
					return []partialRow{row}, nil
				}
			}
			return nil, nil
		case ownerBound:
			ownerV, err := thingVertex(ownerBinding)
			if err != nil {
				return nil, err
			}
			owned, err := tm.Owns(snap, ownerV)
			if err != nil {
				return nil, err
			}
			out := make([]partialRow, 0, len(owned))
			for _, a := range owned {
				next := row.clone()
				next[c.Attribute] = ir.ThingBinding(a)
				out = append(out, next)
			}
			return out, nil
		case attrBound:
			attrV, err := thingVertex(attrBinding)
			if err != nil {
				return nil, err
			}
			owners, err := tm.Owners(snap, attrV)
			if err != nil {
				return nil, err
			}
			out := make([]partialRow, 0, len(owners))
			for _, ownerV := range owners {
				owner, err := tm.ThingOf(snap, ownerV)
				if err != nil {
					return nil, err
				}
				next := row.clone()
				next[c.Owner] = ir.ThingBinding(owner)
				out = append(out, next)
			}
			return out, nil
		default:
			return nil, typedberr.NewPlanInvalid("has(%s, %s): neither side is bound", c.Owner, c.Attribute)
		}
	}
}

func roleTypeOf(src pattern.TypeSource) (concept.RoleType, error) {
	if src.IsVariable() || src.Constant == nil {
		return concept.RoleType{}, typedberr.NewPlanInvalid("links requires a concrete role type")
	}
	rt, ok := src.Constant.(concept.RoleType)
	if !ok {
		return concept.RoleType{}, typedberr.NewPlanInvalid("links role source is not a role type")
	}
	return rt, nil
}

func linksStep(c pattern.Links) stepFunc {
	return func(snap storage.Snapshot, tm *storage.ThingManager, row partialRow) ([]partialRow, error) {
		role, err := roleTypeOf(c.Role)
		if err != nil {
			return nil, err
		}
		relBinding, relBound := row[c.Relation]
		playerBinding, playerBound := row[c.Player]

		switch {
		case relBound && playerBound:
			relV, err := thingVertex(relBinding)
			if err != nil {
				return nil, err
			}
			playerV, err := thingVertex(playerBinding)
			if err != nil {
				return nil, err
			}
			players, err := tm.RolePlayers(snap, relV, role)
			if err != nil {
				return nil, err
			}
			for _, p := range players {
				if p.Vertex() == playerV {
					return []partialRow{row}, nil
				}
			}
			return nil, nil
		case relBound:
			relV, err := thingVertex(relBinding)
			if err != nil {
				return nil, err
			}
			players, err := tm.RolePlayers(snap, relV, role)
			if err != nil {
				return nil, err
			}
			out := make([]partialRow, 0, len(players))
			for _, p := range players {
				next := row.clone()
				next[c.Player] = ir.ThingBinding(p)
				out = append(out, next)
			}
			return out, nil
		case playerBound:
			playerV, err := thingVertex(playerBinding)
			if err != nil {
				return nil, err
			}
			relations, err := tm.RelationsPlayedBy(snap, playerV, role)
			if err != nil {
				return nil, err
			}
			out := make([]partialRow, 0, len(relations))
			for _, r := range relations {
				next := row.clone()
				next[c.Relation] = ir.ThingBinding(r)
				out = append(out, next)
			}
			return out, nil
		default:
			return nil, typedberr.NewPlanInvalid("links(%s, %s): neither side is bound", c.Relation, c.Player)
		}
	}
}

func dedupStep(c pattern.LinksDeduplication) stepFunc {
	return func(snap storage.Snapshot, tm *storage.ThingManager, row partialRow) ([]partialRow, error) {
		firstBinding, ok1 := row[c.First.Player]
		secondBinding, ok2 := row[c.Second.Player]
		if !ok1 || !ok2 {
			return nil, typedberr.NewPlanInvalid("links deduplication requires both players already bound")
		}
		firstV, err := thingVertex(firstBinding)
		if err != nil {
			return nil, err
		}
		secondV, err := thingVertex(secondBinding)
		if err != nil {
			return nil, err
		}
		if firstV == secondV && c.First.Role == c.Second.Role {
			return nil, nil
		}
		return []partialRow{row}, nil
	}
}

func comparisonStep(c pattern.Comparison) stepFunc {
	return func(snap storage.Snapshot, tm *storage.ThingManager, row partialRow) ([]partialRow, error) {
		left, ok1 := row[c.Left]
		right, ok2 := row[c.Right]
		if !ok1 || !ok2 {
			return nil, typedberr.NewPlanInvalid("comparison requires both sides already bound")
		}
		lv, err := bindingValue(left)
		if err != nil {
			return nil, err
		}
		rv, err := bindingValue(right)
		if err != nil {
			return nil, err
		}
		if lv.Type() != rv.Type() {
			return nil, typedberr.NewTypeMismatch("cannot compare %s to %s", lv.Type(), rv.Type())
		}
		cmp := lv.Compare(rv)
		ok := false
		switch c.Op {
		case pattern.CompareEqual:
			ok = cmp == 0
		case pattern.CompareNotEqual:
			ok = cmp != 0
		case pattern.CompareLess:
			ok = cmp < 0
		case pattern.CompareLessOrEqual:
			ok = cmp <= 0
		case pattern.CompareGreater:
			ok = cmp > 0
		case pattern.CompareGreaterOrEqual:
			ok = cmp >= 0
		}
		if !ok {
			return nil, nil
		}
		return []partialRow{row}, nil
	}
}

func bindingValue(b ir.Binding) (concept.Value, error) {
	if b.Kind == ir.BindingValue {
		return b.Value, nil
	}
	if b.Thing.IsAttribute() {
		return b.Thing.Value(), nil
	}
	return concept.Value{}, typedberr.NewTypeMismatch("binding is not a value or attribute")
}

func relationIndexStep(c pattern.RelationIndexLookup) stepFunc {
	return func(snap storage.Snapshot, tm *storage.ThingManager, row partialRow) ([]partialRow, error) {
		role1, err := roleTypeOf(c.Role1)
		if err != nil {
			return nil, err
		}
		role2, err := roleTypeOf(c.Role2)
		if err != nil {
			return nil, err
		}
		p1Binding, p1Bound := row[c.Player1]
		p2Binding, p2Bound := row[c.Player2]

		bindRelation := func(next partialRow, rel concept.Thing) {
			if c.Relation.Name != "" {
				next[c.Relation] = ir.ThingBinding(rel)
			}
		}

		switch {
		case p1Bound && !p2Bound:
			p1V, err := thingVertex(p1Binding)
			if err != nil {
				return nil, err
			}
			relations, err := tm.RelationsPlayedBy(snap, p1V, role1)
			if err != nil {
				return nil, err
			}
			var out []partialRow
			for _, rel := range relations {
				players, err := tm.RolePlayers(snap, rel.Vertex(), role2)
				if err != nil {
					return nil, err
				}
				for _, p2 := range players {
					next := row.clone()
					next[c.Player2] = ir.ThingBinding(p2)
					bindRelation(next, rel)
					out = append(out, next)
				}
			}
			return out, nil
		case p2Bound && !p1Bound:
			p2V, err := thingVertex(p2Binding)
			if err != nil {
				return nil, err
			}
			relations, err := tm.RelationsPlayedBy(snap, p2V, role2)
			if err != nil {
				return nil, err
			}
			var out []partialRow
			for _, rel := range relations {
				players, err := tm.RolePlayers(snap, rel.Vertex(), role1)
				if err != nil {
					return nil, err
				}
				for _, p1 := range players {
					next := row.clone()
					next[c.Player1] = ir.ThingBinding(p1)
					bindRelation(next, rel)
					out = append(out, next)
				}
			}
			return out, nil
		case p1Bound && p2Bound:
			p1V, err := thingVertex(p1Binding)
			if err != nil {
				return nil, err
			}
			relations, err := tm.RelationsPlayedBy(snap, p1V, role1)
			if err != nil {
				return nil, err
			}
			p2V, err := thingVertex(p2Binding)
			if err != nil {
				return nil, err
			}
			for _, rel := range relations {
				players, err := tm.RolePlayers(snap, rel.Vertex(), role2)
				if err != nil {
					return nil, err
				}
				for _, p2 := range players {
					if p2.Vertex() == p2V {
						next := row.clone()
						bindRelation(next, rel)
						return []partialRow{next}, nil
					}
				}
			}
			return nil, nil
		default:
			return nil, typedberr.NewPlanInvalid("relation index lookup requires at least one player bound")
		}
	}
}
