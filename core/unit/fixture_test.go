package unit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/prefix"
)

const ns = "http://example.org/units/"

type fixture struct {
	c       *Catalog
	second  *Unit
	metre   *Unit
	gram    *Unit
	kg      *Unit
	mg      *Unit
	km      *Unit
	inch    *Unit
	foot    *Unit
	pound   *Unit
	hour    *Unit
	accel   *Unit
	gravity *Unit
	newton  *Unit
	pascal  *Unit
}

func root(t *testing.T, c *Catalog, id, name, symbol string, dim dimension.Dimension) *Unit {
	t.Helper()
	u, err := c.SingularUnit(SingularSpec{
		Metadata: Metadata{
			Identifier:    label.Identifier(ns + id),
			Labels:        []label.Text{label.Plain(name)},
			Symbols:       []label.Text{label.Plain(symbol)},
			SystemOfUnits: "SI",
		},
		Dimensions: dim,
	})
	require.NoError(t, err)
	return u
}

func scaled(t *testing.T, c *Catalog, id, name, symbol string, base *Unit, factor float64) *Unit {
	t.Helper()
	u, err := c.SingularUnit(SingularSpec{
		Metadata: Metadata{
			Identifier: label.Identifier(ns + id),
			Labels:     []label.Text{label.Plain(name)},
			Symbols:    []label.Text{label.Plain(symbol)},
		},
		BaseUnit: base,
		Factor:   factor,
	})
	require.NoError(t, err)
	return u
}

func prefixed(t *testing.T, c *Catalog, prefixID string, base *Unit, meta Metadata) *Unit {
	t.Helper()
	u, err := c.PrefixedUnitByID(prefixID, PrefixedSpec{Metadata: meta, BaseUnit: base})
	require.NoError(t, err)
	return u
}

func mul(t *testing.T, c *Catalog, a, b *Unit) *Unit {
	t.Helper()
	u, err := c.UnitMultiplication(MultiplicationSpec{Multiplier: a, Multiplicand: b})
	require.NoError(t, err)
	return u
}

func div(t *testing.T, c *Catalog, a, b *Unit) *Unit {
	t.Helper()
	u, err := c.UnitDivision(DivisionSpec{Numerator: a, Denominator: b})
	require.NoError(t, err)
	return u
}

func pow(t *testing.T, c *Catalog, a *Unit, e int) *Unit {
	t.Helper()
	u, err := c.UnitExponentiation(ExponentiationSpec{Base: a, Exponent: e})
	require.NoError(t, err)
	return u
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := NewCatalog(WithPrefixes(prefix.NewStandardRegistry()))
	f := &fixture{c: c}

	f.second = root(t, c, "second", "second", "s", dimension.Time)
	f.metre = root(t, c, "metre", "metre", "m", dimension.Length)
	f.gram = root(t, c, "gram", "gram", "g", dimension.Mass)
	f.kg = prefixed(t, c, prefix.Kilo, f.gram, Metadata{Identifier: ns + "kilogram", SystemOfUnits: "SI"})
	f.mg = prefixed(t, c, prefix.Milli, f.gram, Metadata{Identifier: ns + "milligram"})
	f.km = prefixed(t, c, prefix.Kilo, f.metre, Metadata{Identifier: ns + "kilometre"})

	f.inch = scaled(t, c, "inch", "inch", "in", f.metre, 0.0254)
	f.foot = scaled(t, c, "foot", "foot", "ft", f.inch, 12)
	f.pound = scaled(t, c, "pound", "pound", "lb", f.kg, 0.45359237)
	f.hour = scaled(t, c, "hour", "hour", "h", f.second, 3600)

	f.accel = div(t, c, f.metre, pow(t, c, f.second, 2))
	f.gravity = scaled(t, c, "standardAccelerationOfGravity", "standard acceleration of gravity", "g_n", f.accel, 9.80665)
	f.newton = mul(t, c, f.kg, f.accel)
	f.pascal = div(t, c, f.newton, pow(t, c, f.metre, 2))

	for _, base := range []*Unit{f.second, f.metre, f.kg} {
		markBase(t, c, base, "SI")
	}
	return f
}

// markBase flags an already registered unit as base unit through a metadata-only request
func markBase(t *testing.T, c *Catalog, u *Unit, system string) {
	t.Helper()
	meta := Metadata{Identifier: u.Identifier(), SystemOfUnits: system, IsBaseUnit: true}
	var (
		got *Unit
		err error
	)
	switch u.Kind() {
	case KindPrefixed:
		got, err = c.PrefixedUnit(PrefixedSpec{Metadata: meta, Prefix: u.Prefix(), BaseUnit: u.BaseUnit()})
	default:
		got, err = c.SingularUnit(SingularSpec{Metadata: meta, Dimensions: u.Dimensions(), BaseUnit: u.BaseUnit(), Factor: u.Factor()})
	}
	require.NoError(t, err)
	require.Same(t, u, got)
}
