package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wbrown/typedb-core/compiler"
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/concept/vertex"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/typeinfo"
)

func TestFormatRowsReportsNoRows(t *testing.T) {
	exec := &compiler.MatchExecutable{
		ID:          compiler.NewExecutableID(),
		Annotations: typeinfo.NewAnnotations(),
		Schema:      ir.NewRowSchema(),
	}

	out := NewTableFormatter().FormatRows(exec, nil)
	assert.Equal(t, "_No rows_", out)
}

func TestFormatRowsRendersSelectedColumns(t *testing.T) {
	reg := concept.NewTypeRegistry()
	person := reg.DefineEntityType("person", concept.EntityType{})
	p := ir.Variable{Name: "p"}

	exec := &compiler.MatchExecutable{
		ID:           compiler.NewExecutableID(),
		Annotations:  typeinfo.NewAnnotations(),
		Schema:       ir.NewRowSchema(p),
		SelectedVars: []ir.Variable{p},
	}

	v := vertex.Vertex{Prefix: vertex.PrefixEntity, TypeID: person.ID(), Sequence: 0}
	entity := concept.NewEntity(v, person)
	rows := []ir.Row{{ir.ThingBinding(entity)}}

	out := NewTableFormatter().FormatRows(exec, rows)
	assert.True(t, strings.Contains(out, "$p"))
	assert.True(t, strings.Contains(out, "1 rows"))
}
