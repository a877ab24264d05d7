// Package unit provides units of measure, the catalog that creates and
// deduplicates them, and the conversion engine.
//
// A Unit is one of six kinds. Singular units are either root units (no base,
// e.g. gram) or a scalar multiple of a base unit (inch = 0.0254 metre).
// Prefixed units apply a prefix to a base unit, unit multiples are singular
// units with derived labels, and the three compound kinds combine other units
// by multiplication, division and exponentiation.
//
// Structural fields never change after construction. Metadata (identifier,
// labels, symbols, system of units, base-unit flag) can be enriched by the
// owning Catalog when a later request resolves to an existing unit.
package unit

import (
	"fmt"
	"strconv"
	"sync"

	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/prefix"
)

// Kind identifies the variant of a unit
type Kind int

const (
	// KindSingular is a root unit or a scalar multiple of a base unit
	KindSingular Kind = iota

	// KindPrefixed is a prefix applied to a base unit
	KindPrefixed

	// KindMultiple is a singular unit with labels derived from its factor
	KindMultiple

	// KindMultiplication is the product of two units
	KindMultiplication

	// KindDivision is the quotient of two units
	KindDivision

	// KindExponentiation is a unit raised to an integer power
	KindExponentiation
)

// String implements Stringer
func (k Kind) String() string {
	switch k {
	case KindSingular:
		return "singular"
	case KindPrefixed:
		return "prefixed"
	case KindMultiple:
		return "multiple"
	case KindMultiplication:
		return "multiplication"
	case KindDivision:
		return "division"
	case KindExponentiation:
		return "exponentiation"
	default:
		return "unknown"
	}
}

// IsCompound reports whether the kind combines other units algebraically
func (k Kind) IsCompound() bool {
	return k == KindMultiplication || k == KindDivision || k == KindExponentiation
}

// isSingularFamily reports whether the kind scales a single base unit
func (k Kind) isSingularFamily() bool {
	return k == KindSingular || k == KindMultiple
}

// Unit is a unit of measure
type Unit struct {
	kind    Kind
	dim     dimension.Dimension
	catalog *Catalog

	// base is the base unit of singular, multiple and prefixed units and the
	// base of an exponentiation
	base     *Unit
	factor   float64
	prefix   *prefix.Prefix
	left     *Unit // multiplier or numerator
	right    *Unit // multiplicand or denominator
	exponent int

	mu     sync.RWMutex
	id     label.Identifier
	texts  label.Set
	system string
	isBase bool
}

// Kind returns the variant of the unit
func (u *Unit) Kind() Kind { return u.kind }

// Dimensions returns the dimension of the unit
func (u *Unit) Dimensions() dimension.Dimension { return u.dim }

// Catalog returns the catalog that created the unit
func (u *Unit) Catalog() *Catalog { return u.catalog }

// IsCompound reports whether the unit is a multiplication, division or exponentiation
func (u *Unit) IsCompound() bool { return u.kind.IsCompound() }

// BaseUnit returns the base unit of a singular, multiple, prefixed or
// exponentiation unit; nil for root units and other compounds
func (u *Unit) BaseUnit() *Unit { return u.base }

// Factor returns how many base units one of this unit is. Prefixed units
// report their prefix factor; compounds report 1.
func (u *Unit) Factor() float64 {
	switch u.kind {
	case KindSingular, KindMultiple:
		return u.factor
	case KindPrefixed:
		return u.prefix.Factor
	default:
		return 1
	}
}

// Prefix returns the prefix of a prefixed unit
func (u *Unit) Prefix() *prefix.Prefix { return u.prefix }

// Multiplier returns the first operand of a multiplication
func (u *Unit) Multiplier() *Unit { return operand(u, KindMultiplication, u.left) }

// Multiplicand returns the second operand of a multiplication
func (u *Unit) Multiplicand() *Unit { return operand(u, KindMultiplication, u.right) }

// Numerator returns the numerator of a division
func (u *Unit) Numerator() *Unit { return operand(u, KindDivision, u.left) }

// Denominator returns the denominator of a division
func (u *Unit) Denominator() *Unit { return operand(u, KindDivision, u.right) }

// Exponent returns the exponent of an exponentiation, 1 otherwise
func (u *Unit) Exponent() int {
	if u.kind != KindExponentiation {
		return 1
	}
	return u.exponent
}

func operand(u *Unit, k Kind, v *Unit) *Unit {
	if u.kind != k {
		return nil
	}
	return v
}

// Constituents returns the units this unit is directly derived from
func (u *Unit) Constituents() []*Unit {
	switch u.kind {
	case KindMultiplication, KindDivision:
		return []*Unit{u.left, u.right}
	default:
		if u.base != nil {
			return []*Unit{u.base}
		}
		return nil
	}
}

// Identifier returns the identifier of the unit
func (u *Unit) Identifier() label.Identifier {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.id
}

// SystemOfUnits returns the system-of-units tag, empty when unset
func (u *Unit) SystemOfUnits() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.system
}

// IsBaseUnit reports whether the unit is the base unit of its dimension in its system of units
func (u *Unit) IsBaseUnit() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.isBase
}

// Label returns the preferred label, empty when the unit has none
func (u *Unit) Label() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	l, _ := u.texts.Label()
	return l.Value
}

// Symbol returns the preferred symbol, empty when the unit has none
func (u *Unit) Symbol() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	s, _ := u.texts.Symbol()
	return s.Value
}

// PreferredLabel returns the preferred label in a language
func (u *Unit) PreferredLabel(lang string) (label.Text, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.texts.PreferredLabel(lang)
}

// PreferredSymbol returns the preferred symbol in a language
func (u *Unit) PreferredSymbol(lang string) (label.Text, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.texts.PreferredSymbol(lang)
}

// AllLabels returns every label of the unit
func (u *Unit) AllLabels() []label.Text {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.texts.AllLabels()
}

// AllSymbols returns every symbol of the unit
func (u *Unit) AllSymbols() []label.Text {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.texts.AllSymbols()
}

// HasLabel reports whether the unit carries a label with this value
func (u *Unit) HasLabel(value string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.texts.HasLabel(value)
}

// HasSymbol reports whether the unit carries a symbol with this value
func (u *Unit) HasSymbol(value string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.texts.HasSymbol(value)
}

// AddAlternativeLabel attaches an alternative label
func (u *Unit) AddAlternativeLabel(t label.Text) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.texts.AddAlternativeLabel(t)
}

func (u *Unit) sharesText(other *Unit) bool {
	if u == other {
		return true
	}
	u.mu.RLock()
	mine := u.texts.Clone()
	u.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	return mine.SharesText(&other.texts)
}

// DisplayName returns the symbol, falling back to the label and then the identifier
func (u *Unit) DisplayName() string {
	if s := u.Symbol(); s != "" {
		return s
	}
	if l := u.Label(); l != "" {
		return l
	}
	return u.Identifier().String()
}

// String implements Stringer
func (u *Unit) String() string {
	return fmt.Sprintf("%s\t%s\t<%s>  dim: %s", u.Label(), u.Symbol(), u.Identifier(), u.dim)
}

// Equal reports whether two units denote the same unit. Units that both
// carry durable identifiers are equal iff the identifiers match; otherwise
// they are compared structurally per kind. Multiplication is commutative,
// division and exponentiation are positional.
func (u *Unit) Equal(other *Unit) bool {
	if u == other {
		return true
	}
	if u == nil || other == nil {
		return false
	}
	uid, oid := u.Identifier(), other.Identifier()
	if uid.IsDurable() && oid.IsDurable() {
		return uid == oid
	}
	if u.dim != other.dim {
		return false
	}

	switch u.kind {
	case KindSingular, KindMultiple:
		if !other.kind.isSingularFamily() {
			return false
		}
		switch {
		case u.base == nil && other.base == nil:
			return u.sharesText(other)
		case u.base == nil:
			return other.factor == 1 && other.base.Equal(u)
		case other.base == nil:
			return u.factor == 1 && u.base.Equal(other)
		default:
			return u.factor == other.factor && u.base.Equal(other.base)
		}
	case KindPrefixed:
		return other.kind == KindPrefixed && u.prefix.Equal(other.prefix) && u.base.Equal(other.base)
	case KindMultiplication:
		if other.kind != KindMultiplication {
			return false
		}
		return (u.left.Equal(other.left) && u.right.Equal(other.right)) ||
			(u.left.Equal(other.right) && u.right.Equal(other.left))
	case KindDivision:
		return other.kind == KindDivision && u.left.Equal(other.left) && u.right.Equal(other.right)
	case KindExponentiation:
		return other.kind == KindExponentiation && u.exponent == other.exponent && u.base.Equal(other.base)
	}
	return false
}

// operandSymbol renders an operand of a product or quotient. Powers bind
// tighter than . and / so only products and quotients are parenthesized.
func operandSymbol(u *Unit) string {
	s := u.DisplayName()
	if u.kind == KindMultiplication || u.kind == KindDivision {
		return "(" + s + ")"
	}
	return s
}

// powerBaseSymbol renders the base of a power, parenthesized when compound
func powerBaseSymbol(u *Unit) string {
	s := u.DisplayName()
	if u.IsCompound() {
		return "(" + s + ")"
	}
	return s
}

func compoundSymbol(k Kind, left, right *Unit, exponent int) string {
	switch k {
	case KindMultiplication:
		return operandSymbol(left) + "." + operandSymbol(right)
	case KindDivision:
		return operandSymbol(left) + "/" + operandSymbol(right)
	case KindExponentiation:
		return powerBaseSymbol(left) + strconv.Itoa(exponent)
	}
	return ""
}
