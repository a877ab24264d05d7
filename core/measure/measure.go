// Package measure provides Measure and Point values: numbers expressed in a
// unit or on a scale, with conversion, arithmetic and comparison.
package measure

import (
	"fmt"
	"math"

	"om-units/core/determinism"
	"om-units/core/unit"
	"om-units/internal/errors"
)

// compareTolerance is the relative difference below which two converted values compare equal
const compareTolerance = 1e-12

// Quantity is anything that can be treated as a Measure
type Quantity interface {
	AsMeasure() *Measure
}

// Measure is a numerical value expressed in a unit
type Measure struct {
	Value float64    `json:"value"`
	Unit  *unit.Unit `json:"-"`
}

// New creates a measure
func New(value float64, u *unit.Unit) *Measure {
	return &Measure{Value: value, Unit: u}
}

// AsMeasure returns a copy of the measure
func (m *Measure) AsMeasure() *Measure {
	return &Measure{Value: m.Value, Unit: m.Unit}
}

// Convert expresses the measure in another unit, in place
func (m *Measure) Convert(to *unit.Unit) error {
	if to == nil {
		return errors.InvalidArgument("cannot convert to a nil unit")
	}
	factor, err := unit.ConversionFactor(m.Unit, to)
	if err != nil {
		return err
	}
	m.Value *= factor
	m.Unit = to
	return nil
}

// CreateByConverting returns a new measure holding q expressed in to
func CreateByConverting(q Quantity, to *unit.Unit) (*Measure, error) {
	if q == nil {
		return nil, errors.InvalidArgument("cannot convert a nil quantity")
	}
	m := q.AsMeasure()
	if err := m.Convert(to); err != nil {
		return nil, err
	}
	return m, nil
}

// ConvertToBaseUnits converts the measure to the base units of a system of units
func (m *Measure) ConvertToBaseUnits(system string) error {
	c, err := m.catalog()
	if err != nil {
		return err
	}
	base, err := c.BaseUnits(m.Unit, system)
	if err != nil {
		return err
	}
	return m.Convert(base)
}

func (m *Measure) catalog() (*unit.Catalog, error) {
	if m.Unit == nil {
		return nil, errors.InvalidArgument("measure has no unit")
	}
	c := m.Unit.Catalog()
	if c == nil {
		return nil, errors.InvalidArgument("unit %s does not belong to a catalog", m.Unit.DisplayName())
	}
	return c, nil
}

// Add returns the sum of two measures in the unit of m
func (m *Measure) Add(q Quantity) (*Measure, error) {
	other, err := m.sameDimension(q, "added to")
	if err != nil {
		return nil, err
	}
	return &Measure{Value: m.Value + other.Value, Unit: m.Unit}, nil
}

// Sub returns the difference of two measures in the unit of m
func (m *Measure) Sub(q Quantity) (*Measure, error) {
	other, err := m.sameDimension(q, "subtracted from")
	if err != nil {
		return nil, err
	}
	return &Measure{Value: m.Value - other.Value, Unit: m.Unit}, nil
}

func (m *Measure) sameDimension(q Quantity, verb string) (*Measure, error) {
	if q == nil {
		return nil, errors.InvalidArgument("operand is nil")
	}
	other := q.AsMeasure()
	if other.Unit == nil || m.Unit == nil {
		return nil, errors.InvalidArgument("operand has no unit")
	}
	if m.Unit.Dimensions() != other.Unit.Dimensions() {
		return nil, errors.DimensionalMismatch("a measure in %s cannot be %s a measure in %s: %s != %s",
			other.Unit.DisplayName(), verb, m.Unit.DisplayName(), other.Unit.Dimensions(), m.Unit.Dimensions())
	}
	return CreateByConverting(other, m.Unit)
}

// MulScalar scales the value
func (m *Measure) MulScalar(f float64) *Measure {
	return &Measure{Value: m.Value * f, Unit: m.Unit}
}

// DivScalar divides the value
func (m *Measure) DivScalar(f float64) (*Measure, error) {
	if f == 0 {
		return nil, errors.InvalidArgument("division by zero")
	}
	return &Measure{Value: m.Value / f, Unit: m.Unit}, nil
}

// Mul returns the product of two quantities, expressed in the simplified product unit
func (m *Measure) Mul(q Quantity) (*Measure, error) {
	return m.combine(q, unit.KindMultiplication)
}

// Div returns the quotient of two quantities, expressed in the simplified quotient unit
func (m *Measure) Div(q Quantity) (*Measure, error) {
	return m.combine(q, unit.KindDivision)
}

func (m *Measure) combine(q Quantity, kind unit.Kind) (*Measure, error) {
	if q == nil {
		return nil, errors.InvalidArgument("operand is nil")
	}
	other := q.AsMeasure()
	c, err := m.catalog()
	if err != nil {
		return nil, err
	}
	if other.Unit == nil {
		return nil, errors.InvalidArgument("operand has no unit")
	}

	var (
		combined *unit.Unit
		value    float64
	)
	if kind == unit.KindMultiplication {
		value = m.Value * other.Value
		combined, err = c.UnitMultiplication(unit.MultiplicationSpec{Multiplier: m.Unit, Multiplicand: other.Unit})
	} else {
		if other.Value == 0 {
			return nil, errors.InvalidArgument("division by a zero measure")
		}
		value = m.Value / other.Value
		combined, err = c.UnitDivision(unit.DivisionSpec{Numerator: m.Unit, Denominator: other.Unit})
	}
	if err != nil {
		return nil, err
	}

	result := &Measure{Value: value, Unit: combined}
	simplified, err := c.SimplifiedCompoundUnit(combined)
	if err != nil {
		return nil, err
	}
	if simplified != combined {
		if err := result.Convert(simplified); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Compare converts q into the unit of m and returns -1, 0 or +1. Values
// within a relative difference of 1e-12 compare equal.
func (m *Measure) Compare(q Quantity) (int, error) {
	if q == nil {
		return 0, errors.InvalidArgument("operand is nil")
	}
	other, err := CreateByConverting(q, m.Unit)
	if err != nil {
		return 0, err
	}
	return compareValues(m.Value, other.Value), nil
}

func compareValues(a, b float64) int {
	if math.Abs(a-b) <= compareTolerance*math.Max(math.Abs(a), math.Abs(b)) {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// Equal reports whether q denotes the same amount as m
func (m *Measure) Equal(q Quantity) (bool, error) {
	c, err := m.Compare(q)
	return c == 0, err
}

// Less reports whether m is smaller than q
func (m *Measure) Less(q Quantity) (bool, error) {
	c, err := m.Compare(q)
	return c < 0, err
}

// LessOrEqual reports whether m is not larger than q
func (m *Measure) LessOrEqual(q Quantity) (bool, error) {
	c, err := m.Compare(q)
	return c <= 0, err
}

// Greater reports whether m is larger than q
func (m *Measure) Greater(q Quantity) (bool, error) {
	c, err := m.Compare(q)
	return c > 0, err
}

// GreaterOrEqual reports whether m is not smaller than q
func (m *Measure) GreaterOrEqual(q Quantity) (bool, error) {
	c, err := m.Compare(q)
	return c >= 0, err
}

// Format renders the value with at most precision decimal places followed by the unit symbol
func (m *Measure) Format(precision int32) string {
	return determinism.NewAmountFromFloat(m.Value).StringTrimmed(precision) + " " + unitName(m.Unit)
}

// String implements Stringer
func (m *Measure) String() string {
	return fmt.Sprintf("%v %s", m.Value, unitName(m.Unit))
}

func unitName(u *unit.Unit) string {
	if u == nil {
		return ""
	}
	return u.DisplayName()
}
