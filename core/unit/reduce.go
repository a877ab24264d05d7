package unit

import (
	"sort"
)

type reducedTerm struct {
	unit     *Unit
	exponent int
}

// SimplifiedCompoundUnit reduces a compound unit by merging constituents
// that are equal or share a dimension, dropping cancelled terms and
// rebuilding the unit in a canonical order: numerator terms by ascending
// exponent, denominator terms by ascending magnitude. Non-compound units,
// divisions whose operands share a dimension and units whose terms all
// cancel are returned unchanged, as is a unit already in reduced form.
func (c *Catalog) SimplifiedCompoundUnit(u *Unit) (*Unit, error) {
	if u == nil || !u.IsCompound() {
		return u, nil
	}
	if u.kind == KindDivision && u.left.dim == u.right.dim {
		return u, nil
	}

	terms, err := u.UnitsExponents()
	if err != nil {
		return nil, err
	}

	var groups []reducedTerm
	for _, t := range terms {
		groups = mergeTerm(groups, t)
	}

	kept := groups[:0]
	for _, g := range groups {
		if g.exponent != 0 {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		return u, nil
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].exponent, kept[j].exponent
		if (a > 0) != (b > 0) {
			return a > 0
		}
		if a > 0 {
			return a < b
		}
		return -a < -b
	})

	result, err := c.rebuild(kept)
	if err != nil {
		return nil, err
	}
	if result.Equal(u) {
		return u, nil
	}
	return result, nil
}

// ReduceUnit is an alias of SimplifiedCompoundUnit
func (c *Catalog) ReduceUnit(u *Unit) (*Unit, error) {
	return c.SimplifiedCompoundUnit(u)
}

// mergeTerm adds t to the first group holding an equal unit, else to the
// first group of the same dimension, else starts a new group
func mergeTerm(groups []reducedTerm, t Term) []reducedTerm {
	for i := range groups {
		if groups[i].unit.Equal(t.Unit) {
			groups[i].exponent += t.Exponent
			return groups
		}
	}
	for i := range groups {
		if groups[i].unit.dim == t.Unit.dim {
			groups[i].exponent += t.Exponent
			return groups
		}
	}
	return append(groups, reducedTerm{unit: t.Unit, exponent: t.Exponent})
}

func (c *Catalog) rebuild(terms []reducedTerm) (*Unit, error) {
	var num, den []reducedTerm
	for _, t := range terms {
		if t.exponent > 0 {
			num = append(num, t)
		} else {
			den = append(den, t)
		}
	}

	if len(num) == 0 {
		return c.product(den, false)
	}
	numerator, err := c.product(num, true)
	if err != nil {
		return nil, err
	}
	if len(den) == 0 {
		return numerator, nil
	}
	denominator, err := c.product(den, true)
	if err != nil {
		return nil, err
	}
	return c.UnitDivision(DivisionSpec{Numerator: numerator, Denominator: denominator})
}

// product folds terms into a left-nested multiplication. With magnitude set
// exponents are taken as absolute values.
func (c *Catalog) product(terms []reducedTerm, magnitude bool) (*Unit, error) {
	var result *Unit
	for _, t := range terms {
		e := t.exponent
		if magnitude && e < 0 {
			e = -e
		}
		factor := t.unit
		if e != 1 {
			var err error
			factor, err = c.UnitExponentiation(ExponentiationSpec{Base: t.unit, Exponent: e})
			if err != nil {
				return nil, err
			}
		}
		if result == nil {
			result = factor
			continue
		}
		var err error
		result, err = c.UnitMultiplication(MultiplicationSpec{Multiplier: result, Multiplicand: factor})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
