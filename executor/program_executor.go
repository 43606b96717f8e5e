package executor

import (
	"context"

	"github.com/wbrown/typedb-core/compiler"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/storage"
)

// FunctionExecutor runs one named, reusable sub-pattern. It is just a
// MatchExecutable plus the machinery to run it, kept distinct from the
// top-level entry so a ProgramExecutor can invoke the same compiled
// function body from multiple call sites without recompiling it.
type FunctionExecutor struct {
	executable *compiler.MatchExecutable
}

// NewFunctionExecutor wraps a compiled function body.
func NewFunctionExecutor(executable *compiler.MatchExecutable) *FunctionExecutor {
	return &FunctionExecutor{executable: executable}
}

// Run executes the function body against snap and returns every resulting
// row.
func (f *FunctionExecutor) Run(ctx context.Context, snap storage.Snapshot, tm *storage.ThingManager) ([]ir.Row, error) {
	pe := NewPatternExecutor(f.executable, snap, tm)
	defer pe.Close()
	var rows []ir.Row
	for pe.Advance(ctx) {
		rows = append(rows, pe.Row().Clone())
	}
	return rows, pe.Err()
}

// ProgramExecutor owns one entry PatternExecutor plus the named functions
// the entry pattern's constraints may call into. Function-call constraints
// are not yet among pattern.Constraint's implementations (see DESIGN.md),
// so functions is populated and available to callers building their own
// constraint evaluation, but the entry pattern does not currently invoke
// it itself.
type ProgramExecutor struct {
	entry     *PatternExecutor
	functions map[string]*FunctionExecutor
}

// NewProgramExecutor builds a ProgramExecutor around a compiled entry
// pattern and its callable functions.
func NewProgramExecutor(entry *PatternExecutor, functions map[string]*FunctionExecutor) *ProgramExecutor {
	if functions == nil {
		functions = map[string]*FunctionExecutor{}
	}
	return &ProgramExecutor{entry: entry, functions: functions}
}

// Function looks up a callable function by name.
func (p *ProgramExecutor) Function(name string) (*FunctionExecutor, bool) {
	f, ok := p.functions[name]
	return f, ok
}

// IntoIterator consumes the ProgramExecutor and returns its entry row
// stream. Once called, the ProgramExecutor should not be used again.
func (p *ProgramExecutor) IntoIterator() *PatternExecutor {
	return p.entry
}
