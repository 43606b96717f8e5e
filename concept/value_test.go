package concept

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTypeTag(t *testing.T) {
	assert.Equal(t, ValueTypeBoolean, Boolean(true).Type())
	assert.Equal(t, ValueTypeLong, Long(5).Type())
	assert.Equal(t, ValueTypeDouble, Double(1.5).Type())
	assert.Equal(t, ValueTypeString, String("x").Type())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Long(5).Equal(Long(5)))
	assert.False(t, Long(5).Equal(Long(6)))
	assert.False(t, Long(5).Equal(Boolean(true)))
	assert.True(t, String("a").Equal(String("a")))
}

func TestDoublePreservesBitPattern(t *testing.T) {
	bits := uint64(0x7FF8000000000001) // non-canonical NaN payload
	v := Double(math.Float64frombits(bits))

	require.True(t, math.IsNaN(v.AsDouble()))
	assert.Equal(t, bits, math.Float64bits(v.AsDouble()))
}

func TestDoubleDistinctNaNPayloadsAreNotEqual(t *testing.T) {
	a := Double(math.NaN())
	b := Double(math.Copysign(math.NaN(), -1))
	assert.False(t, a.Equal(b), "distinct NaN bit patterns must not be treated as equal")
}

func TestDoubleNaNComparesUnequalToItself(t *testing.T) {
	n := Double(math.NaN())
	assert.NotEqual(t, 0, n.Compare(n), "NaN must compare non-equal to itself per IEEE-754")
}

func TestValueCompareRequiresSameType(t *testing.T) {
	assert.Panics(t, func() {
		Long(1).Compare(String("1"))
	})
}

func TestValueCompareOrdering(t *testing.T) {
	assert.Equal(t, -1, Long(1).Compare(Long(2)))
	assert.Equal(t, 1, Long(2).Compare(Long(1)))
	assert.Equal(t, 0, Long(2).Compare(Long(2)))
	assert.Equal(t, -1, String("a").Compare(String("b")))
	assert.Equal(t, -1, Double(1.0).Compare(Double(2.0)))
}
