package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"om-units/core/standard"
	"om-units/internal/errors"
)

func TestPointConvert(t *testing.T) {
	c := newStandard(t)
	k, celsius, fahrenheit := c.Scale(standard.KelvinScale), c.Scale(standard.CelsiusScale), c.Scale(standard.FahrenheitScale)

	tests := []struct {
		name  string
		point *Point
		to    string
		want  float64
	}{
		{name: "32 F in C", point: NewPoint(32, fahrenheit), to: standard.CelsiusScale, want: 0},
		{name: "100 C in F", point: NewPoint(100, celsius), to: standard.FahrenheitScale, want: 212},
		{name: "-40 C in F", point: NewPoint(-40, celsius), to: standard.FahrenheitScale, want: -40},
		{name: "0 K in C", point: NewPoint(0, k), to: standard.CelsiusScale, want: -273.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converted, err := CreatePointByConverting(tt.point, c.Scale(tt.to))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, converted.Value, 1e-9)

			require.NoError(t, converted.Convert(tt.point.Scale))
			assert.InDelta(t, tt.point.Value, converted.Value, 1e-9, "round trip")
		})
	}
}

func TestPointArithmetic(t *testing.T) {
	c := newStandard(t)
	celsius, fahrenheit := c.Scale(standard.CelsiusScale), c.Scale(standard.FahrenheitScale)

	t.Run("point minus point is a measure", func(t *testing.T) {
		diff, err := NewPoint(30, celsius).Sub(NewPoint(50, fahrenheit))
		require.NoError(t, err)
		assert.Same(t, celsius.Unit(), diff.Unit)
		assert.InDelta(t, 20, diff.Value, 1e-9)
	})

	t.Run("point plus measure is a point", func(t *testing.T) {
		warmer, err := NewPoint(20, celsius).AddMeasure(New(9, fahrenheit.Unit()))
		require.NoError(t, err)
		assert.Same(t, celsius, warmer.Scale)
		assert.InDelta(t, 25, warmer.Value, 1e-9)

		colder, err := NewPoint(20, celsius).SubMeasure(New(5, c.Unit(standard.Kelvin)))
		require.NoError(t, err)
		assert.InDelta(t, 15, colder.Value, 1e-9)
	})

	t.Run("point demoted to measure", func(t *testing.T) {
		m, err := NewPoint(10, celsius).Mul(New(2, c.Unit(standard.Metre)))
		require.NoError(t, err)
		assert.InDelta(t, 20, m.Value, 1e-12)
		assert.Equal(t, celsius.Unit().Dimensions().Mul(c.Unit(standard.Metre).Dimensions()), m.Unit.Dimensions())
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := NewPoint(20, celsius).AddMeasure(New(1, c.Unit(standard.Metre)))
		assert.True(t, errors.IsType(err, errors.TypeDimensionalMismatch))
	})
}

func TestPointComparisons(t *testing.T) {
	c := newStandard(t)
	celsius, fahrenheit := c.Scale(standard.CelsiusScale), c.Scale(standard.FahrenheitScale)

	eq, err := NewPoint(100, celsius).Equal(NewPoint(212, fahrenheit))
	require.NoError(t, err)
	assert.True(t, eq)

	less, err := NewPoint(0, celsius).Less(NewPoint(33, fahrenheit))
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := NewPoint(0, celsius).Greater(NewPoint(33, fahrenheit))
	require.NoError(t, err)
	assert.False(t, greater)

	assert.Equal(t, "212 °F", NewPoint(212.0000001, fahrenheit).Format(3))
}

func TestPointWithoutScale(t *testing.T) {
	c := newStandard(t)
	celsius := NewPoint(20, c.Scale(standard.CelsiusScale))
	empty := &Point{}

	_, err := empty.Sub(celsius)
	assert.True(t, errors.IsType(err, errors.TypeInvalidArgument), "got %v", err)

	_, err = celsius.Sub(empty)
	assert.True(t, errors.IsType(err, errors.TypeInvalidArgument), "got %v", err)

	_, err = empty.AddMeasure(New(5, c.Unit(standard.Kelvin)))
	assert.True(t, errors.IsType(err, errors.TypeInvalidArgument), "got %v", err)

	_, err = empty.Compare(celsius)
	assert.True(t, errors.IsType(err, errors.TypeInvalidArgument), "got %v", err)

	_, err = empty.Mul(New(2, c.Unit(standard.Metre)))
	assert.True(t, errors.IsType(err, errors.TypeInvalidArgument), "got %v", err)

	assert.Equal(t, "0 ", empty.String())
	assert.Equal(t, "0 ", empty.Format(2))
}
