package unit

import (
	"go.uber.org/zap"

	"om-units/internal/errors"
)

// BaseUnits returns the unit of the same dimension built from the base
// units of a system of units. A unit flagged as base for the dimension is
// used directly; otherwise compound units are rebuilt from the base units of
// their constituents and scaled units defer to their base unit. An empty
// system matches base units of any system.
func (c *Catalog) BaseUnits(u *Unit, system string) (*Unit, error) {
	if u == nil {
		return nil, errors.InvalidArgument("cannot find base units of a nil unit")
	}
	return c.baseUnits(u, system, 0)
}

func (c *Catalog) baseUnits(u *Unit, system string, depth int) (*Unit, error) {
	if depth > maxDerivationDepth {
		return nil, errors.Structural("base unit search for %s exceeds depth %d", u.DisplayName(), maxDerivationDepth)
	}

	key := baseKey{unit: u, system: system}
	c.mu.RLock()
	cached, ok := c.baseCache[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	result, err := c.findBaseUnits(u, system, depth)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.baseCache[key] = result
	c.mu.Unlock()
	c.logger.Debug("resolved base units",
		zap.String("unit", u.DisplayName()),
		zap.String("system", system),
		zap.String("base", result.DisplayName()))
	return result, nil
}

func (c *Catalog) findBaseUnits(u *Unit, system string, depth int) (*Unit, error) {
	if direct, ok := c.first(func(b *Unit) bool {
		return b.dim == u.dim && b.IsBaseUnit() && (system == "" || b.SystemOfUnits() == system)
	}); ok {
		return direct, nil
	}

	switch u.kind {
	case KindMultiplication:
		a, err := c.baseUnits(u.left, system, depth+1)
		if err != nil {
			return nil, err
		}
		b, err := c.baseUnits(u.right, system, depth+1)
		if err != nil {
			return nil, err
		}
		return c.UnitMultiplication(MultiplicationSpec{Multiplier: a, Multiplicand: b})
	case KindDivision:
		a, err := c.baseUnits(u.left, system, depth+1)
		if err != nil {
			return nil, err
		}
		b, err := c.baseUnits(u.right, system, depth+1)
		if err != nil {
			return nil, err
		}
		return c.UnitDivision(DivisionSpec{Numerator: a, Denominator: b})
	case KindExponentiation:
		a, err := c.baseUnits(u.base, system, depth+1)
		if err != nil {
			return nil, err
		}
		return c.UnitExponentiation(ExponentiationSpec{Base: a, Exponent: u.exponent})
	default:
		if u.base != nil {
			return c.baseUnits(u.base, system, depth+1)
		}
	}

	return nil, errors.UnitIdentity("no base unit registered for dimension %s in system %q", u.dim, system).
		WithContext("unit", u.DisplayName())
}
