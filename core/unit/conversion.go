package unit

import (
	"math"

	"om-units/core/determinism"
	"om-units/core/label"
	"om-units/internal/errors"
)

// maxDerivationDepth bounds how deep a unit derivation may nest
const maxDerivationDepth = 64

// Term is a unit raised to an exponent with a multiplicative factor
type Term struct {
	Unit     *Unit
	Exponent int
	Factor   float64
}

// NormalizedTerm is the summed exponent and combined factor of one atomic unit
type NormalizedTerm struct {
	Unit     *Unit
	Exponent int
	Factor   float64
}

// BaseUnitsExponents decomposes the unit into atomic units (root units with
// no base). The factor of a scaled unit is folded into the first term as
// factor^(1/exponent) so that the product of Factor^Exponent over all terms
// equals the size of the unit in atomic units.
func (u *Unit) BaseUnitsExponents() ([]Term, error) {
	return u.baseTerms(make(map[*Unit]bool), 0)
}

func (u *Unit) baseTerms(path map[*Unit]bool, depth int) ([]Term, error) {
	if depth > maxDerivationDepth {
		return nil, errors.Structural("derivation of %s exceeds depth %d", u.DisplayName(), maxDerivationDepth)
	}
	if path[u] {
		return nil, errors.Structural("derivation cycle through %s", u.DisplayName())
	}
	path[u] = true
	defer delete(path, u)

	switch u.kind {
	case KindSingular, KindMultiple:
		if u.base == nil {
			return []Term{{Unit: u, Exponent: 1, Factor: 1}}, nil
		}
		terms, err := u.base.baseTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		return foldFactor(terms, u.factor), nil
	case KindPrefixed:
		terms, err := u.base.baseTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		return foldFactor(terms, u.prefix.Factor), nil
	case KindMultiplication:
		left, err := u.left.baseTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		right, err := u.right.baseTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case KindDivision:
		num, err := u.left.baseTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		den, err := u.right.baseTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		for i := range den {
			den[i].Exponent = -den[i].Exponent
		}
		return append(num, den...), nil
	case KindExponentiation:
		terms, err := u.base.baseTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		for i := range terms {
			terms[i].Exponent *= u.exponent
		}
		return terms, nil
	}
	return nil, errors.Internal("unknown unit kind "+u.kind.String(), nil)
}

// foldFactor multiplies a scale factor into the first term
func foldFactor(terms []Term, factor float64) []Term {
	if len(terms) == 0 || factor == 1 {
		return terms
	}
	t := &terms[0]
	t.Factor *= math.Pow(factor, 1/float64(t.Exponent))
	return terms
}

// UnitsExponents decomposes compound units into their non-compound
// constituents, without descending into singular or prefixed units
func (u *Unit) UnitsExponents() ([]Term, error) {
	return u.unitTerms(make(map[*Unit]bool), 0)
}

func (u *Unit) unitTerms(path map[*Unit]bool, depth int) ([]Term, error) {
	if depth > maxDerivationDepth {
		return nil, errors.Structural("derivation of %s exceeds depth %d", u.DisplayName(), maxDerivationDepth)
	}
	if path[u] {
		return nil, errors.Structural("derivation cycle through %s", u.DisplayName())
	}
	path[u] = true
	defer delete(path, u)

	switch u.kind {
	case KindMultiplication, KindDivision:
		left, err := u.left.unitTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		right, err := u.right.unitTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		if u.kind == KindDivision {
			for i := range right {
				right[i].Exponent = -right[i].Exponent
			}
		}
		return append(left, right...), nil
	case KindExponentiation:
		terms, err := u.base.unitTerms(path, depth+1)
		if err != nil {
			return nil, err
		}
		for i := range terms {
			terms[i].Exponent *= u.exponent
		}
		return terms, nil
	default:
		return []Term{{Unit: u, Exponent: 1, Factor: 1}}, nil
	}
}

// Normalize combines terms per atomic unit: exponents are summed and
// factors multiplied as Factor^Exponent
func Normalize(terms []Term) *determinism.StableMap[label.Identifier, NormalizedTerm] {
	m := determinism.NewStableMap[label.Identifier, NormalizedTerm]()
	for _, t := range terms {
		m.Update(t.Unit.Identifier(), func(n NormalizedTerm, ok bool) NormalizedTerm {
			if !ok {
				n = NormalizedTerm{Unit: t.Unit, Factor: 1}
			}
			n.Exponent += t.Exponent
			n.Factor *= math.Pow(t.Factor, float64(t.Exponent))
			return n
		})
	}
	return m
}

// CanConvert reports whether values in from can be expressed in to
func CanConvert(from, to *Unit) (bool, error) {
	if from == nil || to == nil {
		return false, errors.InvalidArgument("cannot convert between nil units")
	}
	return from.dim == to.dim, nil
}

// ConversionFactor returns f such that a value v in from equals v*f in to.
// Units must share a dimension and decompose into the same atomic units.
func ConversionFactor(from, to *Unit) (float64, error) {
	ok, err := CanConvert(from, to)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.DimensionalMismatch("cannot convert %s %s to %s %s",
			from.DisplayName(), from.dim, to.DisplayName(), to.dim)
	}
	if from == to {
		return 1, nil
	}

	fromTerms, err := from.BaseUnitsExponents()
	if err != nil {
		return 0, err
	}
	toTerms, err := to.BaseUnitsExponents()
	if err != nil {
		return 0, err
	}
	fromNorm, toNorm := Normalize(fromTerms), Normalize(toTerms)

	mismatch := func(a, b *determinism.StableMap[label.Identifier, NormalizedTerm]) bool {
		found := false
		a.Range(func(id label.Identifier, n NormalizedTerm) bool {
			other, _ := b.Get(id)
			if n.Exponent != other.Exponent {
				found = true
				return false
			}
			return true
		})
		return found
	}
	if mismatch(fromNorm, toNorm) || mismatch(toNorm, fromNorm) {
		return 0, errors.UnitConversion("%s and %s do not share a common ancestor unit",
			from.DisplayName(), to.DisplayName())
	}

	return totalFactor(fromNorm) / totalFactor(toNorm), nil
}

func totalFactor(m *determinism.StableMap[label.Identifier, NormalizedTerm]) float64 {
	total := 1.0
	m.Range(func(_ label.Identifier, n NormalizedTerm) bool {
		total *= n.Factor
		return true
	})
	return total
}

// TryConversionFactor returns the conversion factor and whether the units are convertible
func TryConversionFactor(from, to *Unit) (float64, bool) {
	f, err := ConversionFactor(from, to)
	if err != nil {
		return 0, false
	}
	return f, true
}
