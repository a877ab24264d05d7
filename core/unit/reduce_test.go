package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplifiedCompoundUnit(t *testing.T) {
	f := newFixture(t)

	t.Run("same dimension terms merge into the first", func(t *testing.T) {
		u := div(t, f.c, mul(t, f.c, f.kg, f.mg), f.gram)
		got, err := f.c.SimplifiedCompoundUnit(u)
		require.NoError(t, err)
		assert.Same(t, f.kg, got)
	})

	t.Run("equal terms become a power", func(t *testing.T) {
		got, err := f.c.SimplifiedCompoundUnit(mul(t, f.c, f.metre, f.metre))
		require.NoError(t, err)
		assert.Same(t, pow(t, f.c, f.metre, 2), got)
	})

	t.Run("cancelled terms are dropped", func(t *testing.T) {
		got, err := f.c.SimplifiedCompoundUnit(div(t, f.c, mul(t, f.c, f.metre, f.second), f.metre))
		require.NoError(t, err)
		assert.Same(t, f.second, got)
	})

	t.Run("numerator terms precede denominator terms", func(t *testing.T) {
		u := mul(t, f.c, pow(t, f.c, f.second, -2), mul(t, f.c, f.kg, f.metre))
		got, err := f.c.SimplifiedCompoundUnit(u)
		require.NoError(t, err)

		require.Equal(t, KindDivision, got.Kind())
		num := got.Numerator()
		require.Equal(t, KindMultiplication, num.Kind())
		assert.Same(t, f.kg, num.Multiplier())
		assert.Same(t, f.metre, num.Multiplicand())
		assert.Same(t, pow(t, f.c, f.second, 2), got.Denominator())
	})

	t.Run("denominator only", func(t *testing.T) {
		got, err := f.c.SimplifiedCompoundUnit(div(t, f.c, f.metre, mul(t, f.c, f.metre, f.second)))
		require.NoError(t, err)
		require.Equal(t, KindExponentiation, got.Kind())
		assert.Equal(t, -1, got.Exponent())
		assert.Same(t, f.second, got.BaseUnit())
	})

	t.Run("denominator terms by ascending magnitude", func(t *testing.T) {
		u := div(t, f.c, f.kg, mul(t, f.c, pow(t, f.c, f.second, 2), f.metre))
		got, err := f.c.ReduceUnit(u)
		require.NoError(t, err)
		require.Equal(t, KindDivision, got.Kind())
		den := got.Denominator()
		require.Equal(t, KindMultiplication, den.Kind())
		assert.Same(t, f.metre, den.Multiplier())
		assert.Same(t, pow(t, f.c, f.second, 2), den.Multiplicand())
	})

	unchanged := []struct {
		name string
		unit *Unit
	}{
		{name: "non-compound", unit: f.foot},
		{name: "ratio of equal dimensions", unit: div(t, f.c, f.metre, f.km)},
		{name: "already reduced", unit: div(t, f.c, f.km, f.hour)},
		{name: "everything cancels", unit: mul(t, f.c, f.metre, pow(t, f.c, f.metre, -1))},
	}
	for _, tt := range unchanged {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.c.SimplifiedCompoundUnit(tt.unit)
			require.NoError(t, err)
			assert.Same(t, tt.unit, got)
		})
	}
}

func TestSimplifiedUnitStillNeedsConversion(t *testing.T) {
	f := newFixture(t)
	u := div(t, f.c, mul(t, f.c, f.kg, f.mg), f.gram)

	got, err := f.c.SimplifiedCompoundUnit(u)
	require.NoError(t, err)

	factor, err := ConversionFactor(u, got)
	require.NoError(t, err)
	assert.InDelta(t, 1e-3, factor, 1e-15)
}
