package definitions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/prefix"
	"om-units/core/scale"
	"om-units/core/standard"
	"om-units/core/unit"
	"om-units/internal/errors"
)

const ns = "http://example.org/units/"

func newLoader(t *testing.T) (*Loader, *standard.Catalog) {
	t.Helper()
	c, err := standard.New(zap.NewNop(), unit.WithPrefixes(prefix.NewStandardRegistry()))
	require.NoError(t, err)
	return NewLoader(c.Units, c.Scales, WithLogger(zap.NewNop())), c
}

const nauticalDefinitions = `
unit "nautical_mile" {
  identifier = "http://example.org/units/nauticalMile"
  label      = "nautical mile"
  labels     = { nl = "zeemijl", de = "Seemeile" }
  symbol     = "nmi"
  base_unit  = "http://www.ontology-of-units-of-measure.org/resource/om-2/metre"
  factor     = 1852
}

unit "knot" {
  kind        = "division"
  identifier  = "http://example.org/units/knot"
  label       = "knot"
  symbol      = "kn"
  numerator   = "nautical_mile"
  denominator = "h"
}

unit "square_nautical_mile" {
  base     = "nautical_mile"
  exponent = 2
}

unit "cable" {
  kind      = "multiple"
  label     = "cable"
  base_unit = "nautical_mile"
  factor    = 0.1
}
`

func TestLoadUnits(t *testing.T) {
	l, c := newLoader(t)

	result, err := l.Load([]byte(nauticalDefinitions), "nautical.hcl")
	require.NoError(t, err)
	require.Len(t, result.Units, 4)

	nmi := result.Units["nautical_mile"]
	assert.Equal(t, label.Identifier(ns+"nauticalMile"), nmi.Identifier())
	assert.Equal(t, "nmi", nmi.Symbol())
	assert.Equal(t, "nautical mile", nmi.Label())
	assert.True(t, nmi.HasLabel("zeemijl"))
	assert.True(t, nmi.HasLabel("Seemeile"))
	assert.Equal(t, dimension.Length, nmi.Dimensions())

	knot := result.Units["knot"]
	assert.Equal(t, unit.KindDivision, knot.Kind())
	factor, err := unit.ConversionFactor(knot, c.Unit(standard.KilometrePerHour))
	require.NoError(t, err)
	assert.InDelta(t, 1.852, factor, 1e-9)

	square := result.Units["square_nautical_mile"]
	assert.Equal(t, unit.KindExponentiation, square.Kind())
	assert.Equal(t, dimension.Length.Pow(2), square.Dimensions())

	cable := result.Units["cable"]
	assert.Equal(t, unit.KindMultiple, cable.Kind())
	factor, err = unit.ConversionFactor(cable, c.Unit(standard.Metre))
	require.NoError(t, err)
	assert.InDelta(t, 185.2, factor, 1e-9)

	resolved, err := c.Units.Resolve("kn")
	require.NoError(t, err)
	assert.Same(t, knot, resolved)
}

func TestLoadIsIdempotent(t *testing.T) {
	l, c := newLoader(t)

	first, err := l.Load([]byte(nauticalDefinitions), "nautical.hcl")
	require.NoError(t, err)
	count := c.Units.Len()

	second, err := l.Load([]byte(nauticalDefinitions), "nautical-again.hcl")
	require.NoError(t, err)
	assert.Equal(t, count, c.Units.Len())
	for name, u := range first.Units {
		assert.Same(t, u, second.Units[name], name)
	}
}

func TestLoadPrefixesAndScales(t *testing.T) {
	l, c := newLoader(t)

	src := `
scale "rankine" {
  kind       = "interval"
  identifier = "http://example.org/units/RankineScale"
  label      = "Rankine scale"
  unit       = "rankine_degree"
  base_scale = "http://www.ontology-of-units-of-measure.org/resource/om-2/KelvinScale"
  offset     = 0
  fixed_points = {
    "freezing point of water" = 491.67
  }
}

unit "rankine_degree" {
  identifier = "http://example.org/units/degreeRankine"
  label      = "degree Rankine"
  symbol     = "°R"
  base_unit  = "K"
  factor     = 0.5555555555555556
}

prefix "myria" {
  identifier = "http://example.org/units/myria"
  symbol     = "my"
  factor     = 10000
}

unit "myriametre" {
  kind      = "prefixed"
  prefix    = "myria"
  base_unit = "m"
}

unit "decametre" {
  prefix    = "deca"
  base_unit = "m"
}
`
	result, err := l.Load([]byte(src), "extras.hcl")
	require.NoError(t, err)

	p, ok := c.Units.Prefixes().Lookup(ns + "myria")
	require.True(t, ok)
	assert.Same(t, p, result.Prefixes["myria"])

	myriametre := result.Units["myriametre"]
	assert.Equal(t, "mym", myriametre.Symbol())
	assert.Equal(t, "myriametre", myriametre.Label())
	factor, err := unit.ConversionFactor(myriametre, c.Unit(standard.Kilometre))
	require.NoError(t, err)
	assert.InDelta(t, 10, factor, 1e-9)

	decametre := result.Units["decametre"]
	assert.Equal(t, unit.KindPrefixed, decametre.Kind())
	assert.Equal(t, "dam", decametre.Symbol())

	rankine := result.Scales["rankine"]
	require.Len(t, rankine.FixedPoints(), 1)
	assert.InDelta(t, 491.67, rankine.FixedPoints()[0].Value, 1e-9)

	factor, err = scale.ConversionFactor(rankine, c.Scale(standard.FahrenheitScale))
	require.NoError(t, err)
	assert.InDelta(t, 1, factor, 1e-9)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		typ  errors.Type
	}{
		{
			name: "syntax error",
			src:  `unit "broken" {`,
			typ:  errors.TypeParsing,
		},
		{
			name: "unknown attribute",
			src:  `unit "odd" { colour = "blue" }`,
			typ:  errors.TypeParsing,
		},
		{
			name: "duplicate block",
			src:  "unit \"a\" {\n label = \"a\"\n}\nunit \"a\" {\n label = \"b\"\n}\n",
			typ:  errors.TypeParsing,
		},
		{
			name: "reference cycle",
			src: `
unit "a" {
  base_unit = "b"
  factor    = 2
}
unit "b" {
  base_unit = "a"
  factor    = 3
}
`,
			typ: errors.TypeStructural,
		},
		{
			name: "self reference",
			src:  `unit "a" { base_unit = "a" }`,
			typ:  errors.TypeStructural,
		},
		{
			name: "unknown reference",
			src:  `unit "a" { base_unit = "furlong-that-does-not-exist" }`,
			typ:  errors.TypeNotFound,
		},
		{
			name: "unknown kind",
			src:  `unit "a" { kind = "logarithmic" }`,
			typ:  errors.TypeInvalidArgument,
		},
		{
			name: "conflicting redefinition",
			src: `
unit "metre_again" {
  identifier = "http://www.ontology-of-units-of-measure.org/resource/om-2/metre"
  base_unit  = "ft"
  factor     = 3
}
`,
			typ: errors.TypeUnitIdentity,
		},
		{
			name: "interval scale without base",
			src: `
scale "s" {
  kind = "interval"
  unit = "K"
}
`,
			typ:  errors.TypeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLoader(t)
			_, err := l.Load([]byte(tt.src), "broken.hcl")
			require.Error(t, err)
			assert.True(t, anyOfType(err, tt.typ), "got %v", err)
		})
	}
}

func TestFailuresAreAggregated(t *testing.T) {
	l, _ := newLoader(t)

	src := `
unit "good" {
  label     = "good unit"
  base_unit = "m"
  factor    = 7
}
unit "bad" {
  base_unit = "nowhere"
}
unit "depends_on_bad" {
  numerator   = "bad"
  denominator = "s"
}
unit "worse" {
  kind = "exponentiation"
}
`
	result, err := l.Load([]byte(src), "mixed.hcl")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, result.Units, "good")
	assert.NotContains(t, result.Units, "bad")
	assert.NotContains(t, result.Units, "depends_on_bad")
}

func TestLoadFilesAcrossFiles(t *testing.T) {
	l, _ := newLoader(t)
	dir := t.TempDir()

	base := filepath.Join(dir, "base.hcl")
	derived := filepath.Join(dir, "derived.hcl")
	require.NoError(t, os.WriteFile(derived, []byte(`
unit "double_span" {
  kind      = "multiple"
  base_unit = "span"
  factor    = 2
}
`), 0644))
	require.NoError(t, os.WriteFile(base, []byte(`
unit "span" {
  label     = "span"
  base_unit = "in"
  factor    = 9
}
`), 0644))

	result, err := l.LoadFiles(derived, base)
	require.NoError(t, err)
	assert.Same(t, result.Units["span"], result.Units["double_span"].BaseUnit())

	_, err = l.LoadFiles(filepath.Join(dir, "missing.hcl"))
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}

func TestLoadVariables(t *testing.T) {
	c, err := standard.New(zap.NewNop(), unit.WithPrefixes(prefix.NewStandardRegistry()))
	require.NoError(t, err)
	l := NewLoader(c.Units, c.Scales, WithLogger(zap.NewNop()), WithVariable("ex", ns))

	result, err := l.Load([]byte(`
unit "league" {
  identifier = "${ex}league"
  label      = "league"
  base_unit  = "${om}mile-Statute"
  factor     = 3
}
`), "league.hcl")
	require.NoError(t, err)

	league := result.Units["league"]
	assert.Equal(t, label.Identifier(ns+"league"), league.Identifier())
	factor, err := unit.ConversionFactor(league, c.Unit(standard.Mile))
	require.NoError(t, err)
	assert.InDelta(t, 3, factor, 1e-12)

	_, err = l.Load([]byte(`
unit "rod" {
  base_unit = "${undefined}rod"
  factor    = 5.0292
}
`), "rod.hcl")
	assert.True(t, errors.IsType(err, errors.TypeParsing), "got %v", err)
}

func anyOfType(err error, typ errors.Type) bool {
	for _, e := range multierr.Errors(err) {
		if errors.IsType(e, typ) {
			return true
		}
	}
	return false
}
