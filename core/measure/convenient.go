package measure

import (
	"math"

	"go.uber.org/zap"

	"om-units/core/unit"
	"om-units/internal/logging"
)

// ConvertToConvenientUnits converts the measure to the unit of the same
// dimension, optionally restricted to a system of units, in which the value
// reads best. A candidate scores |log10|v||, plus 2 when |v| < 1 and plus 1
// when the candidate is prefixed or compound; the lowest score wins and ties
// go to the unit registered first. Prefixed candidates are skipped unless
// usePrefixes is set. A zero value keeps its unit.
func (m *Measure) ConvertToConvenientUnits(system string, usePrefixes bool) error {
	c, err := m.catalog()
	if err != nil {
		return err
	}
	if m.Value == 0 {
		return nil
	}

	var (
		best      *unit.Unit
		bestScore = math.Inf(1)
	)
	for _, candidate := range c.WithDimensions(m.Unit.Dimensions(), system) {
		if candidate.Kind() == unit.KindPrefixed && !usePrefixes {
			continue
		}
		factor, ok := unit.TryConversionFactor(m.Unit, candidate)
		if !ok {
			continue
		}
		if score := readability(m.Value*factor, candidate); score < bestScore {
			best, bestScore = candidate, score
		}
	}
	if best == nil {
		return nil
	}

	logging.Debug("selected convenient unit",
		zap.String("from", m.Unit.DisplayName()),
		zap.String("to", best.DisplayName()),
		zap.Float64("score", bestScore))
	return m.Convert(best)
}

func readability(v float64, candidate *unit.Unit) float64 {
	abs := math.Abs(v)
	score := math.Abs(math.Log10(abs))
	if abs < 1 {
		score += 2
	}
	if candidate.Kind() == unit.KindPrefixed || candidate.IsCompound() {
		score++
	}
	return score
}
