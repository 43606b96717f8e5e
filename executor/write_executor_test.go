package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/typedb-core/compiler"
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/pattern"
	"github.com/wbrown/typedb-core/typeinfo"
)

func TestExecuteInsertCreatesEntityAttributeAndHasEdge(t *testing.T) {
	engine := openTestEngine(t)
	person := engine.Registry.DefineEntityType("person", concept.EntityType{})
	name := engine.Registry.DefineAttributeType("name", concept.ValueTypeString, concept.AttributeType{})
	nameValue := concept.String("Alice")

	exec := &compiler.InsertExecutable{
		ID:     compiler.NewExecutableID(),
		Schema: ir.NewRowSchema(ir.Variable{Name: "p"}, ir.Variable{Name: "n"}),
		Concepts: []compiler.InsertConcept{
			{Position: 0, Kind: compiler.InsertEntity, Type: person},
			{Position: 1, Kind: compiler.InsertAttribute, Type: name, Value: compiler.ValueSource{Constant: &nameValue}},
		},
		Connections: []compiler.InsertConnection{
			{Kind: compiler.InsertHas, Owner: 0, Attribute: 1},
		},
	}

	snap := engine.BeginWrite()
	we := NewWriteExecutor(engine.Things)
	row, err := we.ExecuteInsert(snap, exec, ir.Row{})
	require.NoError(t, err)
	require.NoError(t, snap.Commit())

	require.Len(t, row, 2)
	assert.True(t, row[0].Thing.IsEntity())
	assert.Equal(t, "Alice", row[1].Thing.Value().AsString())

	read := engine.OpenRead()
	defer read.Close()
	owned, err := engine.Things.Owns(read, row[0].Thing.Vertex())
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Alice", owned[0].Value().AsString())
}

func TestExecutePutReturnsExistingRowWithoutInserting(t *testing.T) {
	engine := openTestEngine(t)
	person := engine.Registry.DefineEntityType("person", concept.EntityType{})

	snap := engine.BeginWrite()
	alice, err := engine.Things.PutEntity(snap, person)
	require.NoError(t, err)
	require.NoError(t, snap.Commit())

	p := ir.Variable{Name: "p"}
	match := &compiler.MatchExecutable{
		ID:          compiler.NewExecutableID(),
		Conjunction: pattern.Conjunction{Constraints: []pattern.Constraint{pattern.Isa{Thing: p, Type: pattern.ConstantType(person)}}},
		Annotations: typeinfo.NewAnnotations(),
		Schema:      ir.NewRowSchema(p),
	}
	insert := &compiler.InsertExecutable{
		ID:     compiler.NewExecutableID(),
		Schema: ir.NewRowSchema(p),
		Concepts: []compiler.InsertConcept{
			{Position: 0, Kind: compiler.InsertEntity, Type: person},
		},
	}
	put, err := compiler.NewPutExecutable(match, insert)
	require.NoError(t, err)

	write := engine.BeginWrite()
	we := NewWriteExecutor(engine.Things)
	row, err := we.ExecutePut(context.Background(), write, put, ir.Row{{}})
	require.NoError(t, err)
	require.NoError(t, write.Commit())

	assert.True(t, row[0].Thing.Equal(alice))

	read := engine.OpenRead()
	defer read.Close()
	instances, err := engine.Things.InstancesOfType(read, person)
	require.NoError(t, err)
	assert.Len(t, instances, 1, "put must not have inserted a second person")
}

func TestExecutePutInsertsWhenNoMatchExists(t *testing.T) {
	engine := openTestEngine(t)
	person := engine.Registry.DefineEntityType("person", concept.EntityType{})

	p := ir.Variable{Name: "p"}
	match := &compiler.MatchExecutable{
		ID:          compiler.NewExecutableID(),
		Conjunction: pattern.Conjunction{Constraints: []pattern.Constraint{pattern.Isa{Thing: p, Type: pattern.ConstantType(person)}}},
		Annotations: typeinfo.NewAnnotations(),
		Schema:      ir.NewRowSchema(p),
	}
	insert := &compiler.InsertExecutable{
		ID:     compiler.NewExecutableID(),
		Schema: ir.NewRowSchema(p),
		Concepts: []compiler.InsertConcept{
			{Position: 0, Kind: compiler.InsertEntity, Type: person},
		},
	}
	put, err := compiler.NewPutExecutable(match, insert)
	require.NoError(t, err)

	write := engine.BeginWrite()
	we := NewWriteExecutor(engine.Things)
	row, err := we.ExecutePut(context.Background(), write, put, ir.Row{{}})
	require.NoError(t, err)
	require.NoError(t, write.Commit())
	require.True(t, row[0].Bound)

	read := engine.OpenRead()
	defer read.Close()
	instances, err := engine.Things.InstancesOfType(read, person)
	require.NoError(t, err)
	assert.Len(t, instances, 1)
}
