package unit

import (
	"sort"

	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/prefix"
	"om-units/internal/errors"
)

// WithIdentifier returns the unit registered under id
func (c *Catalog) WithIdentifier(id label.Identifier) (*Unit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.byID[id]
	return u, ok
}

// WithLabel returns every unit carrying a label with this value
func (c *Catalog) WithLabel(value string) []*Unit {
	return c.filter(func(u *Unit) bool { return u.HasLabel(value) })
}

// WithSymbol returns every unit carrying a symbol with this value
func (c *Catalog) WithSymbol(value string) []*Unit {
	return c.filter(func(u *Unit) bool { return u.HasSymbol(value) })
}

// WithDimensions returns the units of a dimension. An empty system matches every system of units.
func (c *Catalog) WithDimensions(dim dimension.Dimension, system string) []*Unit {
	return c.filter(func(u *Unit) bool {
		return u.dim == dim && (system == "" || u.SystemOfUnits() == system)
	})
}

// WithPrefix returns the registered prefixed unit for a prefix and base unit
func (c *Catalog) WithPrefix(p *prefix.Prefix, base *Unit) (*Unit, bool) {
	return c.first(func(u *Unit) bool {
		return u.kind == KindPrefixed && u.prefix.Equal(p) && u.base.Equal(base)
	})
}

// WithMultiplication returns the registered product of a and b in either order
func (c *Catalog) WithMultiplication(a, b *Unit) (*Unit, bool) {
	return c.first(func(u *Unit) bool {
		return u.kind == KindMultiplication &&
			((u.left.Equal(a) && u.right.Equal(b)) || (u.left.Equal(b) && u.right.Equal(a)))
	})
}

// WithDivision returns the registered quotient of numerator and denominator
func (c *Catalog) WithDivision(numerator, denominator *Unit) (*Unit, bool) {
	return c.first(func(u *Unit) bool {
		return u.kind == KindDivision && u.left.Equal(numerator) && u.right.Equal(denominator)
	})
}

// WithExponentiation returns the registered power of base
func (c *Catalog) WithExponentiation(base *Unit, exponent int) (*Unit, bool) {
	return c.first(func(u *Unit) bool {
		return u.kind == KindExponentiation && u.exponent == exponent && u.base.Equal(base)
	})
}

// Resolve finds a unit by identifier, then symbol, then label. A symbol or
// label shared by several units is reported as ambiguous.
func (c *Catalog) Resolve(name string) (*Unit, error) {
	if u, ok := c.WithIdentifier(label.Identifier(name)); ok {
		return u, nil
	}
	for _, candidates := range [][]*Unit{c.WithSymbol(name), c.WithLabel(name)} {
		switch len(candidates) {
		case 0:
			continue
		case 1:
			return candidates[0], nil
		default:
			names := make([]string, 0, len(candidates))
			for _, u := range candidates {
				names = append(names, u.Identifier().String())
			}
			sort.Strings(names)
			return nil, errors.InvalidArgument("%q is ambiguous", name).WithContext("candidates", names)
		}
	}
	return nil, errors.NotFound("unit", name)
}

// All returns the registered units in registration order
func (c *Catalog) All() []*Unit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Unit, len(c.units))
	copy(out, c.units)
	return out
}

// Len returns the number of registered units
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.units)
}

// Clear removes every unit and cached base unit
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units = nil
	c.byID = make(map[label.Identifier]*Unit)
	c.baseCache = make(map[baseKey]*Unit)
}

func (c *Catalog) filter(match func(*Unit) bool) []*Unit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*Unit
	for _, u := range c.units {
		if match(u) {
			out = append(out, u)
		}
	}
	return out
}

func (c *Catalog) first(match func(*Unit) bool) (*Unit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.units {
		if match(u) {
			return u, true
		}
	}
	return nil, false
}
