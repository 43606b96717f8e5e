package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/ir"
)

func TestConjunctionVariablesFirstAppearanceOrder(t *testing.T) {
	reg := concept.NewTypeRegistry()
	person := reg.DefineEntityType("person", concept.EntityType{})

	p := ir.Variable{Name: "p"}
	n := ir.Variable{Name: "n"}

	conj := Conjunction{Constraints: []Constraint{
		Isa{Thing: p, Type: ConstantType(person)},
		Has{Owner: p, Attribute: n},
	}}

	assert.Equal(t, []ir.Variable{p, n}, conj.Variables())
}

func TestConjunctionVariablesDeduplicates(t *testing.T) {
	p := ir.Variable{Name: "p"}
	q := ir.Variable{Name: "q"}
	conj := Conjunction{Constraints: []Constraint{
		Has{Owner: p, Attribute: q},
		Has{Owner: p, Attribute: q},
	}}

	assert.Equal(t, []ir.Variable{p, q}, conj.Variables())
}

func TestTypeSourceVariableVsConstant(t *testing.T) {
	reg := concept.NewTypeRegistry()
	person := reg.DefineEntityType("person", concept.EntityType{})
	v := ir.Variable{Name: "t"}

	constant := ConstantType(person)
	variable := VariableType(v)

	assert.False(t, constant.IsVariable())
	assert.True(t, variable.IsVariable())
	assert.Equal(t, v, variable.Variable)
}
