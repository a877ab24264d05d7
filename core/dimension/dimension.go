// Package dimension provides the seven-component dimension algebra over the
// SI base quantities.
package dimension

import (
	"fmt"
	"strconv"

	"om-units/internal/errors"
)

// Dimension holds the exponents of time (T), length (L), mass (M), electric
// current (I), thermodynamic temperature (Theta), amount of substance (N) and
// luminous intensity (J). The zero value is dimensionless.
//
// Dimension is a comparable value type; == is exact componentwise equality.
type Dimension struct {
	T     float64
	L     float64
	M     float64
	I     float64
	Theta float64
	N     float64
	J     float64
}

// New creates a dimension from its seven exponents
func New(t, l, m, i, theta, n, j float64) Dimension {
	return Dimension{T: t, L: l, M: m, I: i, Theta: theta, N: n, J: j}
}

// FromSlice creates a dimension from up to seven exponents in T, L, M, I, Θ, N, J order
func FromSlice(exponents []float64) (Dimension, error) {
	if len(exponents) > 7 {
		return Dimension{}, errors.InvalidArgument("a dimension has 7 exponents, got %d", len(exponents))
	}
	var e [7]float64
	copy(e[:], exponents)
	return New(e[0], e[1], e[2], e[3], e[4], e[5], e[6]), nil
}

// Common dimensions
var (
	Dimensionless = Dimension{}
	Time          = Dimension{T: 1}
	Length        = Dimension{L: 1}
	Mass          = Dimension{M: 1}
	Current       = Dimension{I: 1}
	Temperature   = Dimension{Theta: 1}
	Amount        = Dimension{N: 1}
	Luminosity    = Dimension{J: 1}
)

// Equal reports exact componentwise equality
func (d Dimension) Equal(other Dimension) bool {
	return d == other
}

// IsDimensionless reports whether all exponents are zero
func (d Dimension) IsDimensionless() bool {
	return d == Dimensionless
}

// Mul returns the dimension of a product (componentwise sum)
func (d Dimension) Mul(other Dimension) Dimension {
	return Dimension{
		T:     d.T + other.T,
		L:     d.L + other.L,
		M:     d.M + other.M,
		I:     d.I + other.I,
		Theta: d.Theta + other.Theta,
		N:     d.N + other.N,
		J:     d.J + other.J,
	}
}

// Div returns the dimension of a quotient (componentwise difference)
func (d Dimension) Div(other Dimension) Dimension {
	return Dimension{
		T:     d.T - other.T,
		L:     d.L - other.L,
		M:     d.M - other.M,
		I:     d.I - other.I,
		Theta: d.Theta - other.Theta,
		N:     d.N - other.N,
		J:     d.J - other.J,
	}
}

// Pow scales every exponent by e. Fractional and negative e are allowed.
func (d Dimension) Pow(e float64) Dimension {
	return Dimension{
		T:     d.T * e,
		L:     d.L * e,
		M:     d.M * e,
		I:     d.I * e,
		Theta: d.Theta * e,
		N:     d.N * e,
		J:     d.J * e,
	}
}

// Add returns d when both operands share a dimension. Adding quantities never
// changes their dimension.
func (d Dimension) Add(other Dimension) (Dimension, error) {
	if d != other {
		return Dimension{}, errors.DimensionalMismatch(
			"entities of different dimensions cannot be added together: %s != %s", d, other)
	}
	return d, nil
}

// Sub returns d when both operands share a dimension
func (d Dimension) Sub(other Dimension) (Dimension, error) {
	if d != other {
		return Dimension{}, errors.DimensionalMismatch(
			"entities of different dimensions cannot be subtracted from each other: %s != %s", d, other)
	}
	return d, nil
}

// Exponents returns the seven exponents in T, L, M, I, Θ, N, J order
func (d Dimension) Exponents() [7]float64 {
	return [7]float64{d.T, d.L, d.M, d.I, d.Theta, d.N, d.J}
}

// String implements Stringer
func (d Dimension) String() string {
	return fmt.Sprintf("(T=%s, L=%s, M=%s, I=%s, θ=%s, N=%s, J=%s)",
		format(d.T), format(d.L), format(d.M), format(d.I), format(d.Theta), format(d.N), format(d.J))
}

func format(v float64) string {
	if v == 0 {
		v = 0 // drops negative zero
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
