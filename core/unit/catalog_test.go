package unit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/prefix"
	"om-units/internal/errors"
)

func TestSingularUnitIdentity(t *testing.T) {
	f := newFixture(t)

	t.Run("same parameters return the same instance", func(t *testing.T) {
		again := scaled(t, f.c, "inch", "inch", "in", f.metre, 0.0254)
		assert.Same(t, f.inch, again)
	})

	t.Run("differing factor conflicts", func(t *testing.T) {
		_, err := f.c.SingularUnit(SingularSpec{
			Metadata: Metadata{Identifier: ns + "inch"},
			BaseUnit: f.metre,
			Factor:   0.03,
		})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.TypeUnitIdentity))
	})

	t.Run("factor within tolerance resolves", func(t *testing.T) {
		u, err := f.c.SingularUnit(SingularSpec{
			Metadata: Metadata{Identifier: ns + "inch"},
			BaseUnit: f.metre,
			Factor:   0.0254 * (1 + 1e-9),
		})
		require.NoError(t, err)
		assert.Same(t, f.inch, u)
	})

	t.Run("re-derivation through another chain resolves", func(t *testing.T) {
		cm := prefixed(t, f.c, prefix.Centi, f.metre, Metadata{})
		u, err := f.c.SingularUnit(SingularSpec{
			Metadata: Metadata{Identifier: ns + "inch"},
			BaseUnit: cm,
			Factor:   2.54,
		})
		require.NoError(t, err)
		assert.Same(t, f.inch, u)
	})

	t.Run("identifier reused across kinds conflicts", func(t *testing.T) {
		_, err := f.c.UnitExponentiation(ExponentiationSpec{
			Metadata: Metadata{Identifier: ns + "inch"},
			Base:     f.metre,
			Exponent: 2,
		})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.TypeUnitIdentity))
	})

	t.Run("root unit with other dimensions conflicts", func(t *testing.T) {
		_, err := f.c.SingularUnit(SingularSpec{
			Metadata:   Metadata{Identifier: ns + "metre"},
			Dimensions: dimension.Time,
		})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.TypeUnitIdentity))
	})
}

func TestCompoundUnitsAreCached(t *testing.T) {
	f := newFixture(t)

	first := mul(t, f.c, f.kg, f.accel)
	second := mul(t, f.c, f.kg, f.accel)
	assert.Same(t, first, second)
	assert.Same(t, f.newton, first)

	swapped := mul(t, f.c, f.accel, f.kg)
	assert.Same(t, f.newton, swapped, "multiplication is commutative")

	ms := div(t, f.c, f.metre, f.second)
	sm := div(t, f.c, f.second, f.metre)
	assert.NotSame(t, ms, sm)
	assert.False(t, ms.Equal(sm))

	assert.Same(t, pow(t, f.c, f.metre, 2), pow(t, f.c, f.metre, 2))
	assert.NotSame(t, pow(t, f.c, f.metre, 2), pow(t, f.c, f.metre, 3))
}

func TestEquality(t *testing.T) {
	f := newFixture(t)
	other := NewCatalog()

	tests := []struct {
		name string
		a, b *Unit
		want bool
	}{
		{name: "durable identifiers differ", a: f.metre, b: f.inch, want: false},
		{name: "reflexive", a: f.pascal, b: f.pascal, want: true},
		{
			name: "durable identifiers match across catalogs",
			a:    f.metre,
			b: func() *Unit {
				u, err := other.SingularUnit(SingularSpec{
					Metadata:   Metadata{Identifier: ns + "metre"},
					Dimensions: dimension.Length,
				})
				require.NoError(t, err)
				return u
			}(),
			want: true,
		},
		{
			name: "anonymous multiple equals its structure",
			a: func() *Unit {
				u, err := f.c.SingularUnit(SingularSpec{
					Metadata: Metadata{NoCache: true},
					BaseUnit: f.metre,
					Factor:   0.0254,
				})
				require.NoError(t, err)
				return u
			}(),
			b:    f.inch,
			want: true,
		},
		{
			name: "factor one singular equals its base",
			a: func() *Unit {
				u, err := f.c.SingularUnit(SingularSpec{Metadata: Metadata{NoCache: true}, BaseUnit: f.metre})
				require.NoError(t, err)
				return u
			}(),
			b:    f.metre,
			want: true,
		},
		{name: "nil", a: f.metre, b: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestNoCacheUnitsAreNotRegistered(t *testing.T) {
	f := newFixture(t)
	before := f.c.Len()

	u, err := f.c.UnitMultiplication(MultiplicationSpec{
		Metadata:     Metadata{NoCache: true},
		Multiplier:   f.kg,
		Multiplicand: f.accel,
	})
	require.NoError(t, err)
	assert.NotSame(t, f.newton, u)
	assert.True(t, f.newton.Equal(u))
	assert.Equal(t, before, f.c.Len())
}

func TestMetadataIsMergedOnCacheHit(t *testing.T) {
	c := NewCatalog()
	anon, err := c.SingularUnit(SingularSpec{
		Metadata:   Metadata{Labels: []label.Text{label.Plain("furlong")}},
		Dimensions: dimension.Length,
	})
	require.NoError(t, err)
	assert.False(t, anon.Identifier().IsDurable())

	named, err := c.SingularUnit(SingularSpec{
		Metadata: Metadata{
			Identifier:    ns + "furlong",
			Labels:        []label.Text{label.Plain("furlong"), label.Lang("Achtelmeile", "de")},
			Symbols:       []label.Text{label.Plain("fur")},
			SystemOfUnits: "Imperial",
			IsBaseUnit:    true,
		},
		Dimensions: dimension.Length,
	})
	require.NoError(t, err)
	require.Same(t, anon, named)

	assert.Equal(t, label.Identifier(ns+"furlong"), named.Identifier())
	assert.Equal(t, "fur", named.Symbol())
	assert.Equal(t, "Imperial", named.SystemOfUnits())
	assert.True(t, named.IsBaseUnit())
	de, ok := named.PreferredLabel("de")
	require.True(t, ok)
	assert.Equal(t, "Achtelmeile", de.Value)

	byID, ok := c.WithIdentifier(ns + "furlong")
	require.True(t, ok)
	assert.Same(t, anon, byID)

	// a conflicting system of units is ignored
	again, err := c.SingularUnit(SingularSpec{
		Metadata:   Metadata{Identifier: ns + "furlong", SystemOfUnits: "SI"},
		Dimensions: dimension.Length,
	})
	require.NoError(t, err)
	assert.Equal(t, "Imperial", again.SystemOfUnits())
}

func TestDuplicateWithSharedSymbolCollapses(t *testing.T) {
	f := newFixture(t)
	n := []label.Text{label.Plain("N")}

	byDivision, err := f.c.UnitDivision(DivisionSpec{
		Metadata:    Metadata{Symbols: n},
		Numerator:   mul(t, f.c, f.kg, f.metre),
		Denominator: pow(t, f.c, f.second, 2),
	})
	require.NoError(t, err)

	byMultiplication, err := f.c.UnitMultiplication(MultiplicationSpec{
		Metadata:     Metadata{Symbols: n},
		Multiplier:   f.metre,
		Multiplicand: div(t, f.c, f.kg, pow(t, f.c, f.second, 2)),
	})
	require.NoError(t, err)
	assert.Same(t, byDivision, byMultiplication)

	unlabelled, err := f.c.UnitMultiplication(MultiplicationSpec{
		Multiplier:   f.second,
		Multiplicand: div(t, f.c, f.kg, div(t, f.c, pow(t, f.c, f.second, 3), f.metre)),
	})
	require.NoError(t, err)
	assert.NotSame(t, byDivision, unlabelled, "no shared label or symbol")
}

func TestDuplicateKeepsDistinctIdentifiers(t *testing.T) {
	f := newFixture(t)
	yard := func(id string, factor float64) (*Unit, error) {
		return f.c.SingularUnit(SingularSpec{
			Metadata: Metadata{
				Identifier: label.Identifier(id),
				Labels:     []label.Text{label.Plain("yard")},
			},
			BaseUnit: f.metre,
			Factor:   factor,
		})
	}

	a, err := yard("http://example.org/a/yard", 0.9144)
	require.NoError(t, err)
	b, err := yard("http://example.org/b/yard", 0.9144)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, label.Identifier("http://example.org/b/yard"), b.Identifier())
	found, ok := f.c.WithIdentifier("http://example.org/b/yard")
	require.True(t, ok)
	assert.Same(t, b, found)

	_, err = yard("http://example.org/b/yard", 5)
	assert.True(t, errors.IsType(err, errors.TypeUnitIdentity), "got %v", err)

	anonymous, err := f.c.SingularUnit(SingularSpec{
		Metadata: Metadata{Labels: []label.Text{label.Plain("yard")}},
		BaseUnit: f.metre,
		Factor:   0.9144,
	})
	require.NoError(t, err)
	assert.Same(t, a, anonymous)
}

func TestConcurrentRequestsShareOneInstance(t *testing.T) {
	f := newFixture(t)
	before := f.c.Len()

	const workers = 32
	var (
		wg        sync.WaitGroup
		quotients [workers]*Unit
		feet      [workers]*Unit
		errs      [workers]error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			quotients[i], errs[i] = f.c.UnitDivision(DivisionSpec{Numerator: f.metre, Denominator: f.kg})
			if errs[i] != nil {
				return
			}
			feet[i], errs[i] = f.c.SingularUnit(SingularSpec{
				Metadata: Metadata{Identifier: label.Identifier(ns + "survey-foot")},
				BaseUnit: f.metre,
				Factor:   1200.0 / 3937,
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, quotients[0], quotients[i])
		assert.Same(t, feet[0], feet[i])
	}
	assert.Equal(t, before+2, f.c.Len())
}

func TestFactoryArgumentValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		call func() error
		typ  errors.Type
	}{
		{
			name: "negative factor",
			call: func() error {
				_, err := f.c.SingularUnit(SingularSpec{BaseUnit: f.metre, Factor: -2})
				return err
			},
			typ: errors.TypeInvalidArgument,
		},
		{
			name: "dimensions disagree with base",
			call: func() error {
				_, err := f.c.SingularUnit(SingularSpec{BaseUnit: f.metre, Dimensions: dimension.Mass, Factor: 2})
				return err
			},
			typ: errors.TypeDimensionalMismatch,
		},
		{
			name: "zero exponent",
			call: func() error {
				_, err := f.c.UnitExponentiation(ExponentiationSpec{Base: f.metre})
				return err
			},
			typ: errors.TypeInvalidArgument,
		},
		{
			name: "missing operand",
			call: func() error {
				_, err := f.c.UnitDivision(DivisionSpec{Numerator: f.metre})
				return err
			},
			typ: errors.TypeInvalidArgument,
		},
		{
			name: "missing prefix",
			call: func() error {
				_, err := f.c.PrefixedUnit(PrefixedSpec{BaseUnit: f.metre})
				return err
			},
			typ: errors.TypeInvalidArgument,
		},
		{
			name: "unknown prefix identifier",
			call: func() error {
				_, err := f.c.PrefixedUnitByID(ns+"bogus", PrefixedSpec{BaseUnit: f.metre})
				return err
			},
			typ: errors.TypeNotFound,
		},
		{
			name: "multiple without base",
			call: func() error {
				_, err := f.c.UnitMultiple(MultipleSpec{Factor: 100})
				return err
			},
			typ: errors.TypeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.typ), "got %v", err)
		})
	}
}

func TestDerivedLabelsAndSymbols(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "kilogram", f.kg.Label())
	assert.Equal(t, "kg", f.kg.Symbol())
	assert.Equal(t, "kilometre", f.km.Label())

	hundredKm, err := f.c.UnitMultiple(MultipleSpec{BaseUnit: f.km, Factor: 100})
	require.NoError(t, err)
	assert.Equal(t, "100 kilometre", hundredKm.Label())
	assert.Equal(t, "100km", hundredKm.Symbol())
	assert.Equal(t, KindMultiple, hundredKm.Kind())

	assert.Equal(t, "m/s2", f.accel.Symbol())
	assert.Equal(t, "kg.(m/s2)", f.newton.Symbol())
	assert.Equal(t, "(m/s)2", pow(t, f.c, div(t, f.c, f.metre, f.second), 2).Symbol())
	assert.Equal(t, "(s2)3", pow(t, f.c, pow(t, f.c, f.second, 2), 3).Symbol())
	assert.Equal(t, "s2", pow(t, f.c, f.second, 2).Symbol())
	assert.Equal(t, "m-1", pow(t, f.c, f.metre, -1).Symbol())
}

func TestLookups(t *testing.T) {
	f := newFixture(t)

	u, ok := f.c.WithPrefix(mustPrefix(t, prefix.Kilo), f.gram)
	require.True(t, ok)
	assert.Same(t, f.kg, u)

	u, ok = f.c.WithMultiplication(f.accel, f.kg)
	require.True(t, ok)
	assert.Same(t, f.newton, u)

	_, ok = f.c.WithDivision(pow(t, f.c, f.second, 2), f.metre)
	assert.False(t, ok)

	u, ok = f.c.WithExponentiation(f.second, 2)
	require.True(t, ok)
	assert.Equal(t, 2, u.Exponent())

	lengths := f.c.WithDimensions(dimension.Length, "")
	assert.Contains(t, lengths, f.metre)
	assert.Contains(t, lengths, f.foot)
	assert.Equal(t, []*Unit{f.metre}, f.c.WithDimensions(dimension.Length, "SI"))

	assert.Equal(t, []*Unit{f.foot}, f.c.WithLabel("foot"))
	assert.Equal(t, []*Unit{f.foot}, f.c.WithSymbol("ft"))
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	_, err := f.c.SingularUnit(SingularSpec{
		Metadata: Metadata{Identifier: ns + "minute", Symbols: []label.Text{label.Plain("m")}},
		BaseUnit: f.second,
		Factor:   60,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want *Unit
		typ  errors.Type
	}{
		{name: "identifier", in: ns + "foot", want: f.foot},
		{name: "symbol", in: "ft", want: f.foot},
		{name: "label", in: "kilometre", want: f.km},
		{name: "ambiguous symbol", in: "m", typ: errors.TypeInvalidArgument},
		{name: "unknown", in: "parsec", typ: errors.TypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.c.Resolve(tt.in)
			if tt.want == nil {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.typ))
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	require.NotZero(t, f.c.Len())

	f.c.Clear()
	assert.Zero(t, f.c.Len())
	_, ok := f.c.WithIdentifier(ns + "metre")
	assert.False(t, ok)
}

func mustPrefix(t *testing.T, id string) *prefix.Prefix {
	t.Helper()
	p, ok := prefix.NewStandardRegistry().Lookup(id)
	require.True(t, ok)
	return p
}
