package executor

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/typedb-core/compiler"
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/pattern"
	"github.com/wbrown/typedb-core/storage"
	"github.com/wbrown/typedb-core/typeinfo"
)

func openTestEngine(t *testing.T) *storage.Engine {
	t.Helper()
	dir, err := os.MkdirTemp("", "typedb-executor-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	registry := concept.NewTypeRegistry()
	engine, err := storage.OpenEngine(dir, registry)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func drain(t *testing.T, pe *PatternExecutor) []ir.Row {
	t.Helper()
	var rows []ir.Row
	for pe.Advance(context.Background()) {
		rows = append(rows, pe.Row().Clone())
	}
	return rows
}

func TestPatternExecutorIsaEnumeratesAllInstances(t *testing.T) {
	engine := openTestEngine(t)
	person := engine.Registry.DefineEntityType("person", concept.EntityType{})

	snap := engine.BeginWrite()
	_, err := engine.Things.PutEntity(snap, person)
	require.NoError(t, err)
	_, err = engine.Things.PutEntity(snap, person)
	require.NoError(t, err)
	require.NoError(t, snap.Commit())

	p := ir.Variable{Name: "p"}
	exec := &compiler.MatchExecutable{
		ID:          compiler.NewExecutableID(),
		Conjunction: pattern.Conjunction{Constraints: []pattern.Constraint{pattern.Isa{Thing: p, Type: pattern.ConstantType(person)}}},
		Annotations: typeinfo.NewAnnotations(),
		Schema:      ir.NewRowSchema(p),
	}

	read := engine.OpenRead()
	defer read.Close()

	pe := NewPatternExecutor(exec, read, engine.Things)
	rows := drain(t, pe)
	require.NoError(t, pe.Err())
	assert.Len(t, rows, 2)
}

func TestPatternExecutorConjoinsIsaAndHas(t *testing.T) {
	engine := openTestEngine(t)
	person := engine.Registry.DefineEntityType("person", concept.EntityType{})
	name := engine.Registry.DefineAttributeType("name", concept.ValueTypeString, concept.AttributeType{})

	snap := engine.BeginWrite()
	alice, err := engine.Things.PutEntity(snap, person)
	require.NoError(t, err)
	bob, err := engine.Things.PutEntity(snap, person)
	require.NoError(t, err)
	aliceName, err := engine.Things.PutAttribute(snap, name, concept.String("Alice"))
	require.NoError(t, err)
	require.NoError(t, engine.Things.PutHas(snap, alice.Vertex(), aliceName.Vertex()))
	require.NoError(t, snap.Commit())
	_ = bob

	p := ir.Variable{Name: "p"}
	n := ir.Variable{Name: "n"}
	exec := &compiler.MatchExecutable{
		ID: compiler.NewExecutableID(),
		Conjunction: pattern.Conjunction{Constraints: []pattern.Constraint{
			pattern.Isa{Thing: p, Type: pattern.ConstantType(person)},
			pattern.Has{Owner: p, Attribute: n},
		}},
		Annotations:  typeinfo.NewAnnotations(),
		Schema:       ir.NewRowSchema(p, n),
		SelectedVars: []ir.Variable{p, n},
	}

	read := engine.OpenRead()
	defer read.Close()

	pe := NewPatternExecutor(exec, read, engine.Things)
	rows := drain(t, pe)
	require.NoError(t, pe.Err())
	require.Len(t, rows, 1, "only alice owns a name attribute")
	assert.Equal(t, "Alice", rows[0][1].Thing.Value().AsString())
}

func TestPatternExecutorComparisonFiltersRows(t *testing.T) {
	engine := openTestEngine(t)
	person := engine.Registry.DefineEntityType("person", concept.EntityType{})
	age := engine.Registry.DefineAttributeType("age", concept.ValueTypeLong, concept.AttributeType{})

	snap := engine.BeginWrite()
	alice, err := engine.Things.PutEntity(snap, person)
	require.NoError(t, err)
	aliceAge, err := engine.Things.PutAttribute(snap, age, concept.Long(30))
	require.NoError(t, err)
	require.NoError(t, engine.Things.PutHas(snap, alice.Vertex(), aliceAge.Vertex()))

	bob, err := engine.Things.PutEntity(snap, person)
	require.NoError(t, err)
	bobAge, err := engine.Things.PutAttribute(snap, age, concept.Long(10))
	require.NoError(t, err)
	require.NoError(t, engine.Things.PutHas(snap, bob.Vertex(), bobAge.Vertex()))
	require.NoError(t, snap.Commit())

	p := ir.Variable{Name: "p"}
	a := ir.Variable{Name: "a"}
	threshold := ir.Variable{Name: "threshold"}
	exec := &compiler.MatchExecutable{
		ID: compiler.NewExecutableID(),
		Conjunction: pattern.Conjunction{Constraints: []pattern.Constraint{
			pattern.Isa{Thing: p, Type: pattern.ConstantType(person)},
			pattern.Has{Owner: p, Attribute: a},
			pattern.Comparison{Left: a, Op: pattern.CompareGreater, Right: threshold},
		}},
		Annotations:  typeinfo.NewAnnotations(),
		Schema:       ir.NewRowSchema(p, a, threshold),
		SelectedVars: []ir.Variable{p},
	}

	read := engine.OpenRead()
	defer read.Close()

	pe := NewPatternExecutorSeeded(exec, read, engine.Things, ir.Row{
		{}, {}, ir.ValueBinding(concept.Long(20)),
	})
	rows := drain(t, pe)
	require.NoError(t, pe.Err())
	require.Len(t, rows, 1, "only alice's age is above the threshold")
}

func TestPatternExecutorReturnsPlanInvalidWhenNeitherSideBound(t *testing.T) {
	engine := openTestEngine(t)
	p := ir.Variable{Name: "p"}
	n := ir.Variable{Name: "n"}
	exec := &compiler.MatchExecutable{
		ID:          compiler.NewExecutableID(),
		Conjunction: pattern.Conjunction{Constraints: []pattern.Constraint{pattern.Has{Owner: p, Attribute: n}}},
		Annotations: typeinfo.NewAnnotations(),
		Schema:      ir.NewRowSchema(p, n),
	}

	read := engine.OpenRead()
	defer read.Close()

	pe := NewPatternExecutor(exec, read, engine.Things)
	assert.False(t, pe.Advance(context.Background()))
	assert.Error(t, pe.Err())
}
