package standard

import (
	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/scale"
	"om-units/core/unit"
)

// anonymous requests a unit without identifier or labels
var anonymous = unit.Metadata{}

func meta(id, name, system string, symbols ...string) unit.Metadata {
	m := unit.Metadata{Identifier: label.Identifier(id), SystemOfUnits: system}
	if name != "" {
		m.Labels = []label.Text{label.Plain(name)}
	}
	for _, s := range symbols {
		m.Symbols = append(m.Symbols, label.Plain(s))
	}
	return m
}

func asBase(m unit.Metadata) unit.Metadata {
	m.IsBaseUnit = true
	return m
}

// builder registers definitions and keeps the first error. Once an error
// is recorded every further request is skipped.
type builder struct {
	units  *unit.Catalog
	scales *scale.Catalog
	err    error
}

func (b *builder) keep(u *unit.Unit, err error) *unit.Unit {
	if err != nil {
		b.err = err
		return nil
	}
	return u
}

func (b *builder) get(id string) *unit.Unit {
	if b.err != nil {
		return nil
	}
	u, _ := b.units.WithIdentifier(label.Identifier(id))
	return u
}

func (b *builder) root(m unit.Metadata, dim dimension.Dimension) *unit.Unit {
	if b.err != nil {
		return nil
	}
	return b.keep(b.units.SingularUnit(unit.SingularSpec{Metadata: m, Dimensions: dim}))
}

func (b *builder) singular(m unit.Metadata, base *unit.Unit, factor float64) *unit.Unit {
	if b.err != nil {
		return nil
	}
	return b.keep(b.units.SingularUnit(unit.SingularSpec{Metadata: m, BaseUnit: base, Factor: factor}))
}

func (b *builder) prefixed(m unit.Metadata, prefixID string, base *unit.Unit) *unit.Unit {
	if b.err != nil {
		return nil
	}
	return b.keep(b.units.PrefixedUnitByID(prefixID, unit.PrefixedSpec{Metadata: m, BaseUnit: base}))
}

func (b *builder) multiply(a, c *unit.Unit) *unit.Unit {
	if b.err != nil {
		return nil
	}
	return b.keep(b.units.UnitMultiplication(unit.MultiplicationSpec{Multiplier: a, Multiplicand: c}))
}

func (b *builder) divide(m unit.Metadata, num, den *unit.Unit) *unit.Unit {
	if b.err != nil {
		return nil
	}
	return b.keep(b.units.UnitDivision(unit.DivisionSpec{Metadata: m, Numerator: num, Denominator: den}))
}

func (b *builder) power(m unit.Metadata, base *unit.Unit, exponent int) *unit.Unit {
	if b.err != nil {
		return nil
	}
	return b.keep(b.units.UnitExponentiation(unit.ExponentiationSpec{Metadata: m, Base: base, Exponent: exponent}))
}

func (b *builder) ratioScale(id, name string, u *unit.Unit) *scale.Scale {
	if b.err != nil {
		return nil
	}
	s, err := b.scales.RatioScale(scale.RatioSpec{
		Metadata: scale.Metadata{Identifier: label.Identifier(id), Labels: []label.Text{label.Plain(name)}},
		Unit:     u,
	})
	if err != nil {
		b.err = err
	}
	return s
}

func (b *builder) intervalScale(id, name string, base *scale.Scale, u *unit.Unit, offset float64) *scale.Scale {
	if b.err != nil {
		return nil
	}
	s, err := b.scales.IntervalScale(scale.IntervalSpec{
		Metadata:  scale.Metadata{Identifier: label.Identifier(id), Labels: []label.Text{label.Plain(name)}},
		BaseScale: base,
		Unit:      u,
		Offset:    offset,
	})
	if err != nil {
		b.err = err
	}
	return s
}

func (b *builder) fixedPoints(s *scale.Scale, points ...scale.FixedPoint) {
	if b.err != nil {
		return
	}
	existing := make(map[scale.FixedPoint]bool)
	for _, p := range s.FixedPoints() {
		existing[p] = true
	}
	for _, p := range points {
		if !existing[p] {
			s.AddFixedPoint(p.Label, p.Value)
		}
	}
}
