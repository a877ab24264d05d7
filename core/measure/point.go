package measure

import (
	"fmt"

	"om-units/core/determinism"
	"om-units/core/scale"
	"om-units/core/unit"
	"om-units/internal/errors"
)

// Point is a numerical value on a scale
type Point struct {
	Value float64      `json:"value"`
	Scale *scale.Scale `json:"-"`
}

// NewPoint creates a point
func NewPoint(value float64, s *scale.Scale) *Point {
	return &Point{Value: value, Scale: s}
}

// AsMeasure demotes the point to a measure in the unit of its scale
func (p *Point) AsMeasure() *Measure {
	return &Measure{Value: p.Value, Unit: p.unit()}
}

// unit returns the unit of the point's scale, nil for a point without a scale
func (p *Point) unit() *unit.Unit {
	if p.Scale == nil {
		return nil
	}
	return p.Scale.Unit()
}

// Convert moves the point to another scale, in place, applying both the
// scale factor and the offset between the scales
func (p *Point) Convert(to *scale.Scale) error {
	if p.Scale == nil || to == nil {
		return errors.InvalidArgument("cannot convert a point without scales")
	}
	factor, err := scale.ConversionFactor(p.Scale, to)
	if err != nil {
		return err
	}
	offset, err := scale.ConversionOffset(p.Scale, to)
	if err != nil {
		return err
	}
	p.Value = p.Value*factor + offset
	p.Scale = to
	return nil
}

// CreatePointByConverting returns a new point holding p on another scale
func CreatePointByConverting(p *Point, to *scale.Scale) (*Point, error) {
	if p == nil {
		return nil, errors.InvalidArgument("cannot convert a nil point")
	}
	converted := &Point{Value: p.Value, Scale: p.Scale}
	if err := converted.Convert(to); err != nil {
		return nil, err
	}
	return converted, nil
}

// Sub returns the distance between two points as a measure in the unit of p's scale
func (p *Point) Sub(other *Point) (*Measure, error) {
	if other == nil {
		return nil, errors.InvalidArgument("operand is nil")
	}
	if p.Scale == nil || other.Scale == nil {
		return nil, errors.InvalidArgument("cannot subtract points without scales")
	}
	if p.Scale.Dimensions() != other.Scale.Dimensions() {
		return nil, errors.DimensionalMismatch("points on scales with dimensions %s and %s cannot be subtracted",
			p.Scale.Dimensions(), other.Scale.Dimensions())
	}
	converted, err := CreatePointByConverting(other, p.Scale)
	if err != nil {
		return nil, err
	}
	return &Measure{Value: p.Value - converted.Value, Unit: p.Scale.Unit()}, nil
}

// AddMeasure shifts the point by a measure
func (p *Point) AddMeasure(m *Measure) (*Point, error) {
	shift, err := p.shift(m)
	if err != nil {
		return nil, err
	}
	return &Point{Value: p.Value + shift, Scale: p.Scale}, nil
}

// SubMeasure shifts the point back by a measure
func (p *Point) SubMeasure(m *Measure) (*Point, error) {
	shift, err := p.shift(m)
	if err != nil {
		return nil, err
	}
	return &Point{Value: p.Value - shift, Scale: p.Scale}, nil
}

func (p *Point) shift(m *Measure) (float64, error) {
	if m == nil {
		return 0, errors.InvalidArgument("operand is nil")
	}
	if p.Scale == nil {
		return 0, errors.InvalidArgument("cannot shift a point without a scale")
	}
	if m.Unit == nil || p.Scale.Dimensions() != m.Unit.Dimensions() {
		return 0, errors.DimensionalMismatch("a measure in %s cannot shift a point on %s",
			unitName(m.Unit), p.Scale.DisplayName())
	}
	converted, err := CreateByConverting(m, p.Scale.Unit())
	if err != nil {
		return 0, err
	}
	return converted.Value, nil
}

// Mul multiplies the point, demoted to a measure, by a quantity
func (p *Point) Mul(q Quantity) (*Measure, error) {
	return p.AsMeasure().Mul(q)
}

// Div divides the point, demoted to a measure, by a quantity
func (p *Point) Div(q Quantity) (*Measure, error) {
	return p.AsMeasure().Div(q)
}

// Compare converts other onto the scale of p and returns -1, 0 or +1
func (p *Point) Compare(other *Point) (int, error) {
	if other == nil {
		return 0, errors.InvalidArgument("operand is nil")
	}
	converted, err := CreatePointByConverting(other, p.Scale)
	if err != nil {
		return 0, err
	}
	return compareValues(p.Value, converted.Value), nil
}

// Equal reports whether both points denote the same position
func (p *Point) Equal(other *Point) (bool, error) {
	c, err := p.Compare(other)
	return c == 0, err
}

// Less reports whether p lies below other
func (p *Point) Less(other *Point) (bool, error) {
	c, err := p.Compare(other)
	return c < 0, err
}

// Greater reports whether p lies above other
func (p *Point) Greater(other *Point) (bool, error) {
	c, err := p.Compare(other)
	return c > 0, err
}

// Format renders the value with at most precision decimal places followed by the scale unit symbol
func (p *Point) Format(precision int32) string {
	return determinism.NewAmountFromFloat(p.Value).StringTrimmed(precision) + " " + unitName(p.unit())
}

// String implements Stringer
func (p *Point) String() string {
	return fmt.Sprintf("%v %s", p.Value, unitName(p.unit()))
}
