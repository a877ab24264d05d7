// Package scale provides ratio and interval measurement scales layered on
// units, and the offset arithmetic needed to convert between them.
package scale

import (
	"fmt"
	"sync"

	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/unit"
	"om-units/internal/errors"
)

// maxBaseDepth bounds the chain of interval scales above a ratio scale
const maxBaseDepth = 64

// Kind identifies the variant of a scale
type Kind int

const (
	// KindRatio is a scale with a true zero tied to a unit
	KindRatio Kind = iota

	// KindInterval is an affine scale offset from a base scale
	KindInterval
)

// String implements Stringer
func (k Kind) String() string {
	switch k {
	case KindRatio:
		return "ratio"
	case KindInterval:
		return "interval"
	default:
		return "unknown"
	}
}

// FixedPoint is a calibration anchor of a scale
type FixedPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Scale is a ratio or interval scale
type Scale struct {
	kind   Kind
	unit   *unit.Unit
	base   *Scale
	offset float64
	dim    dimension.Dimension

	mu          sync.RWMutex
	id          label.Identifier
	texts       label.Set
	system      string
	fixedPoints []FixedPoint
}

// Kind returns the variant of the scale
func (s *Scale) Kind() Kind { return s.kind }

// Unit returns the unit values on this scale are expressed in
func (s *Scale) Unit() *unit.Unit { return s.unit }

// BaseScale returns the base scale of an interval scale, nil for ratio scales
func (s *Scale) BaseScale() *Scale { return s.base }

// Offset returns the offset of an interval scale relative to its base scale
func (s *Scale) Offset() float64 { return s.offset }

// Dimensions returns the dimension of the scale
func (s *Scale) Dimensions() dimension.Dimension { return s.dim }

// Identifier returns the identifier of the scale
func (s *Scale) Identifier() label.Identifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// SystemOfUnits returns the system-of-units tag
func (s *Scale) SystemOfUnits() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.system
}

// Label returns the preferred label, empty when the scale has none
func (s *Scale) Label() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, _ := s.texts.Label()
	return l.Value
}

// AllLabels returns every label of the scale
func (s *Scale) AllLabels() []label.Text {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.texts.AllLabels()
}

// HasLabel reports whether the scale carries a label with this value
func (s *Scale) HasLabel(value string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.texts.HasLabel(value)
}

// AddFixedPoint attaches a calibration anchor
func (s *Scale) AddFixedPoint(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedPoints = append(s.fixedPoints, FixedPoint{Label: name, Value: value})
}

// FixedPoints returns the calibration anchors in insertion order
func (s *Scale) FixedPoints() []FixedPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FixedPoint, len(s.fixedPoints))
	copy(out, s.fixedPoints)
	return out
}

// DisplayName returns the label, falling back to the unit
func (s *Scale) DisplayName() string {
	if l := s.Label(); l != "" {
		return l
	}
	return s.unit.DisplayName()
}

// String implements Stringer
func (s *Scale) String() string {
	if s.kind == KindInterval {
		return fmt.Sprintf("%s\t<%s> base: %s unit: %s dim: %s",
			s.Label(), s.Identifier(), s.base.DisplayName(), s.unit.DisplayName(), s.dim)
	}
	return fmt.Sprintf("%s\t<%s> unit: %s dim: %s", s.Label(), s.Identifier(), s.unit.DisplayName(), s.dim)
}

// Equal reports whether two scales are the same. Ratio scales with durable
// identifiers compare by identifier, otherwise by unit. Interval scales are
// equal when identifiers match or when unit, base scale and offset match.
func (s *Scale) Equal(other *Scale) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || s.kind != other.kind {
		return false
	}
	sid, oid := s.Identifier(), other.Identifier()
	if sid == oid {
		return true
	}

	switch s.kind {
	case KindRatio:
		if sid.IsDurable() && oid.IsDurable() {
			return false
		}
		return s.unit.Equal(other.unit)
	case KindInterval:
		return s.sameStructure(other)
	}
	return false
}

func (s *Scale) sameStructure(other *Scale) bool {
	if s.kind != other.kind || !s.unit.Equal(other.unit) {
		return false
	}
	if s.kind == KindInterval {
		return s.offset == other.offset && s.base.Equal(other.base)
	}
	return true
}

// BaseRatioScale resolves the ratio scale anchoring this scale and the
// cumulative offset, expressed in this scale's unit, needed to reach it
func (s *Scale) BaseRatioScale() (*Scale, float64, error) {
	return s.baseRatioScale(0)
}

func (s *Scale) baseRatioScale(depth int) (*Scale, float64, error) {
	if depth > maxBaseDepth {
		return nil, 0, errors.Structural("base scale chain of %s exceeds depth %d", s.DisplayName(), maxBaseDepth)
	}
	if s.kind == KindRatio {
		return s, 0, nil
	}

	anchor, offset, err := s.base.baseRatioScale(depth + 1)
	if err != nil {
		return nil, 0, err
	}
	factor, err := unit.ConversionFactor(anchor.unit, s.unit)
	if err != nil {
		return nil, 0, err
	}
	return anchor, offset*factor + s.offset, nil
}

// ConversionFactor returns the multiplicative factor between two scales
func ConversionFactor(from, to *Scale) (float64, error) {
	if from == nil || to == nil {
		return 0, errors.ScaleConversion("cannot convert between scales that are not both cardinal scales")
	}
	if from.dim != to.dim {
		return 0, errors.DimensionalMismatch("a scale with dimensions %s cannot be converted to a scale with dimensions %s",
			from.dim, to.dim)
	}
	return unit.ConversionFactor(from.unit, to.unit)
}

// ConversionOffset returns the additive offset, in units of to, applied
// after scaling a value from one scale to the other. Both scales must share
// the same anchoring ratio scale.
func ConversionOffset(from, to *Scale) (float64, error) {
	if from == nil || to == nil {
		return 0, errors.ScaleConversion("cannot convert between scales that are not both cardinal scales")
	}
	fromAnchor, fromOffset, err := from.BaseRatioScale()
	if err != nil {
		return 0, err
	}
	toAnchor, toOffset, err := to.BaseRatioScale()
	if err != nil {
		return 0, err
	}
	if !fromAnchor.Equal(toAnchor) {
		return 0, errors.ScaleConversion("cannot convert from %s to %s as they do not share a known zero point",
			from.DisplayName(), to.DisplayName())
	}

	fromFactor, err := unit.ConversionFactor(from.unit, fromAnchor.unit)
	if err != nil {
		return 0, err
	}
	toFactor, err := unit.ConversionFactor(to.unit, toAnchor.unit)
	if err != nil {
		return 0, err
	}
	return (toOffset*toFactor - fromOffset*fromFactor) / toFactor, nil
}
