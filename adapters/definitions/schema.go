// Package definitions loads prefix, unit and scale definitions from HCL files.
//
// A definition file looks like:
//
//	prefix "kibi-like" {
//	  symbol = "Kl"
//	  factor = 1024
//	}
//
//	unit "furlong" {
//	  kind       = "singular"
//	  identifier = "http://example.org/units/furlong"
//	  label      = "furlong"
//	  symbol     = "fur"
//	  base_unit  = "${om}metre"
//	  factor     = 201.168
//	  system     = "Imperial"
//	}
//
// References name another block of the same type in the loaded files, or a
// unit, scale or prefix already present in the target catalogs. Attribute
// expressions may use the variable om, the OM namespace, and any variable
// given with WithVariable.
package definitions

// File is the decoded content of one definition file
type File struct {
	Prefixes []PrefixBlock `hcl:"prefix,block"`
	Units    []UnitBlock   `hcl:"unit,block"`
	Scales   []ScaleBlock  `hcl:"scale,block"`
}

// PrefixBlock defines a prefix
type PrefixBlock struct {
	Name       string  `hcl:"name,label"`
	Identifier string  `hcl:"identifier,optional"`
	Symbol     string  `hcl:"symbol"`
	Factor     float64 `hcl:"factor"`
}

// UnitBlock defines a unit of any kind
type UnitBlock struct {
	Name       string            `hcl:"name,label"`
	Kind       string            `hcl:"kind,optional"`
	Identifier string            `hcl:"identifier,optional"`
	Label      string            `hcl:"label,optional"`
	Labels     map[string]string `hcl:"labels,optional"`
	Symbol     string            `hcl:"symbol,optional"`
	Symbols    []string          `hcl:"symbols,optional"`
	System     string            `hcl:"system,optional"`
	IsBaseUnit bool              `hcl:"is_base_unit,optional"`

	// singular, multiple
	Dimension []float64 `hcl:"dimension,optional"`
	BaseUnit  string    `hcl:"base_unit,optional"`
	Factor    float64   `hcl:"factor,optional"`

	// prefixed
	Prefix string `hcl:"prefix,optional"`

	// multiplication
	Multiplier   string `hcl:"multiplier,optional"`
	Multiplicand string `hcl:"multiplicand,optional"`

	// division
	Numerator   string `hcl:"numerator,optional"`
	Denominator string `hcl:"denominator,optional"`

	// exponentiation
	Base     string `hcl:"base,optional"`
	Exponent int    `hcl:"exponent,optional"`
}

// ScaleBlock defines a ratio or interval scale
type ScaleBlock struct {
	Name        string             `hcl:"name,label"`
	Kind        string             `hcl:"kind,optional"`
	Identifier  string             `hcl:"identifier,optional"`
	Label       string             `hcl:"label,optional"`
	Unit        string             `hcl:"unit"`
	BaseScale   string             `hcl:"base_scale,optional"`
	Offset      float64            `hcl:"offset,optional"`
	System      string             `hcl:"system,optional"`
	FixedPoints map[string]float64 `hcl:"fixed_points,optional"`
}

// Unit block kinds
const (
	KindSingular       = "singular"
	KindPrefixed       = "prefixed"
	KindMultiple       = "multiple"
	KindMultiplication = "multiplication"
	KindDivision       = "division"
	KindExponentiation = "exponentiation"
)

// Scale block kinds
const (
	KindRatio    = "ratio"
	KindInterval = "interval"
)

// unitKind returns the declared kind, inferring it from the attributes when unset
func (b *UnitBlock) unitKind() string {
	if b.Kind != "" {
		return b.Kind
	}
	switch {
	case b.Prefix != "":
		return KindPrefixed
	case b.Multiplier != "" || b.Multiplicand != "":
		return KindMultiplication
	case b.Numerator != "" || b.Denominator != "":
		return KindDivision
	case b.Base != "":
		return KindExponentiation
	default:
		return KindSingular
	}
}

// references returns the unit references of the block in declaration order
func (b *UnitBlock) references() []string {
	var refs []string
	for _, r := range []string{b.BaseUnit, b.Multiplier, b.Multiplicand, b.Numerator, b.Denominator, b.Base} {
		if r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

func (b *ScaleBlock) scaleKind() string {
	if b.Kind != "" {
		return b.Kind
	}
	if b.BaseScale != "" {
		return KindInterval
	}
	return KindRatio
}
