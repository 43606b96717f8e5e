// Command typedb is a demo CLI exercising the compiler and executor
// packages end to end: it defines a tiny schema, inserts a few instances,
// runs a match query, and prints the result as a table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/wbrown/typedb-core/compiler"
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/executor"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/pattern"
	"github.com/wbrown/typedb-core/storage"
	"github.com/wbrown/typedb-core/typeinfo"
)

func main() {
	dbPath := flag.String("db", "", "path to the database directory (empty for a temporary one)")
	verbose := flag.Bool("verbose", false, "log compiler phase timings")
	flag.Parse()

	if err := run(*dbPath, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func run(dbPath string, verbose bool) error {
	if dbPath == "" {
		tmp, err := os.MkdirTemp("", "typedb-demo-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		dbPath = tmp
	}

	log := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		log = l
	}
	tracer := compiler.NewTracer()
	tracer.Attach(compiler.ZapHandler(log))

	registry := concept.NewTypeRegistry()
	person := registry.DefineEntityType("person", concept.EntityType{})
	name := registry.DefineAttributeType("name", concept.ValueTypeString, concept.AttributeType{})
	friendship := registry.DefineRelationType("friendship", concept.RelationType{})
	friend := registry.DefineRoleType("friend", concept.RoleType{})
	registry.DefineRelates(friendship, friend)
	registry.DefinePlays(person, friend)

	engine, err := storage.OpenEngine(dbPath, registry)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	if err := tracer.Track(compiler.PhaseWrite, func() error {
		return seed(ctx, engine, person, name, friendship, friend)
	}); err != nil {
		return err
	}

	var executable *compiler.MatchExecutable
	if err := tracer.Track(compiler.PhaseBuild, func() error {
		executable = buildQuery(person, name)
		return nil
	}); err != nil {
		return err
	}

	snap := engine.OpenRead()
	defer snap.Close()

	var rows []ir.Row
	if err := tracer.Track(compiler.PhaseExecute, func() error {
		pe := executor.NewPatternExecutor(executable, snap, engine.Things)
		defer pe.Close()
		for pe.Advance(ctx) {
			rows = append(rows, pe.Row().Clone())
		}
		return pe.Err()
	}); err != nil {
		return err
	}

	formatter := executor.NewTableFormatter()
	fmt.Println(color.GreenString("people with a name:"))
	fmt.Println(formatter.FormatRows(executable, rows))
	return nil
}

func seed(ctx context.Context, engine *storage.Engine, person concept.EntityType, name concept.AttributeType, friendship concept.RelationType, friend concept.RoleType) error {
	snap := engine.BeginWrite()
	defer snap.Rollback()

	alice, err := engine.Things.PutEntity(snap, person)
	if err != nil {
		return err
	}
	bob, err := engine.Things.PutEntity(snap, person)
	if err != nil {
		return err
	}
	aliceName, err := engine.Things.PutAttribute(snap, name, concept.String("Alice"))
	if err != nil {
		return err
	}
	bobName, err := engine.Things.PutAttribute(snap, name, concept.String("Bob"))
	if err != nil {
		return err
	}
	if err := engine.Things.PutHas(snap, alice.Vertex(), aliceName.Vertex()); err != nil {
		return err
	}
	if err := engine.Things.PutHas(snap, bob.Vertex(), bobName.Vertex()); err != nil {
		return err
	}
	friendship1, err := engine.Things.PutRelation(snap, friendship)
	if err != nil {
		return err
	}
	if err := engine.Things.PutLinks(snap, friendship1.Vertex(), friend, alice.Vertex()); err != nil {
		return err
	}
	if err := engine.Things.PutLinks(snap, friendship1.Vertex(), friend, bob.Vertex()); err != nil {
		return err
	}
	return snap.Commit()
}

func buildQuery(person concept.EntityType, name concept.AttributeType) *compiler.MatchExecutable {
	p := ir.Variable{Name: "p"}
	n := ir.Variable{Name: "n"}

	conj := pattern.Conjunction{Constraints: []pattern.Constraint{
		pattern.Isa{Thing: p, Type: pattern.ConstantType(person)},
		pattern.Has{Owner: p, Attribute: n},
		pattern.Isa{Thing: n, Type: pattern.ConstantType(name)},
	}}

	schema := ir.NewRowSchema(conj.Variables()...)
	return &compiler.MatchExecutable{
		ID:           compiler.NewExecutableID(),
		Conjunction:  conj,
		Annotations:  typeinfo.NewAnnotations(),
		Schema:       schema,
		SelectedVars: []ir.Variable{p, n},
	}
}
