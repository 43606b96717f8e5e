// Package compiler builds executables from annotated conjunctions: it runs
// the static optimiser's rewrites, then assembles MatchExecutable,
// InsertExecutable and PutExecutable values the executor package runs.
package compiler

import "sync/atomic"

// ExecutableID uniquely identifies one compiled executable for the lifetime
// of the process, assigned from a single process-wide atomic counter.
type ExecutableID uint64

var nextExecutableID atomic.Uint64

// NewExecutableID allocates the next process-wide executable ID.
func NewExecutableID() ExecutableID {
	return ExecutableID(nextExecutableID.Add(1))
}
