// Package standard populates unit and scale catalogs with the SI base and
// derived units, common prefixed units, Imperial units, time multiples and
// the Kelvin, Celsius and Fahrenheit temperature scales.
package standard

import (
	"go.uber.org/zap"

	"om-units/core/dimension"
	"om-units/core/label"
	"om-units/core/prefix"
	"om-units/core/scale"
	"om-units/core/unit"
	"om-units/internal/logging"
)

// Namespace is the identifier namespace of the standard units
const Namespace = prefix.Namespace

// Systems of units
const (
	SI       = "SI"
	Imperial = "Imperial"
)

// Unit identifiers
const (
	Second   = Namespace + "second-Time"
	Metre    = Namespace + "metre"
	Gram     = Namespace + "gram"
	Kilogram = Namespace + "kilogram"
	Ampere   = Namespace + "ampere"
	Kelvin   = Namespace + "kelvin"
	Mole     = Namespace + "mole"
	Candela  = Namespace + "candela"
	One      = Namespace + "one"

	SquareMetre                   = Namespace + "squareMetre"
	CubicMetre                    = Namespace + "cubicMetre"
	MetrePerSecond                = Namespace + "metrePerSecond-Time"
	MetrePerSecondSquared         = Namespace + "metrePerSecond-TimeSquared"
	Hertz                         = Namespace + "hertz"
	Newton                        = Namespace + "newton"
	Pascal                        = Namespace + "pascal"
	Joule                         = Namespace + "joule"
	Watt                          = Namespace + "watt"
	Litre                         = Namespace + "litre"
	StandardAccelerationOfGravity = Namespace + "standardAccelerationOfGravity"

	Kilometre   = Namespace + "kilometre"
	Centimetre  = Namespace + "centimetre"
	Millimetre  = Namespace + "millimetre"
	Micrometre  = Namespace + "micrometre"
	Milligram   = Namespace + "milligram"
	Tonne       = Namespace + "tonne"
	Millisecond = Namespace + "millisecond-Time"
	Kilonewton  = Namespace + "kilonewton"
	Hectopascal = Namespace + "hectopascal"
	Kilopascal  = Namespace + "kilopascal"
	Megapascal  = Namespace + "megapascal"
	Kilojoule   = Namespace + "kilojoule"
	Kilowatt    = Namespace + "kilowatt"
	Millilitre  = Namespace + "millilitre"

	Inch                    = Namespace + "inch-International"
	Foot                    = Namespace + "foot-International"
	Yard                    = Namespace + "yard-International"
	Mile                    = Namespace + "mile-Statute"
	Pound                   = Namespace + "pound-Avoirdupois"
	Ounce                   = Namespace + "ounce-Avoirdupois"
	PoundForce              = Namespace + "poundForce"
	PoundForcePerSquareInch = Namespace + "poundForcePerSquareInch"

	Minute           = Namespace + "minute-Time"
	Hour             = Namespace + "hour"
	Day              = Namespace + "day"
	KilometrePerHour = Namespace + "kilometrePerHour"
	MilePerHour      = Namespace + "milePerHour"

	DegreeCelsius    = Namespace + "degreeCelsius"
	DegreeFahrenheit = Namespace + "degreeFahrenheit"
)

// Scale identifiers
const (
	KelvinScale     = Namespace + "KelvinScale"
	CelsiusScale    = Namespace + "CelsiusScale"
	FahrenheitScale = Namespace + "FahrenheitScale"
)

// Catalog pairs a populated unit catalog with its scale catalog
type Catalog struct {
	Units  *unit.Catalog
	Scales *scale.Catalog
}

// New creates catalogs holding the standard units and scales
func New(logger *zap.Logger, opts ...unit.Option) (*Catalog, error) {
	if logger == nil {
		logger = logging.Named("standard")
	}
	c := &Catalog{
		Units:  unit.NewCatalog(append([]unit.Option{unit.WithLogger(logger.Named("unit"))}, opts...)...),
		Scales: scale.NewCatalog(scale.WithLogger(logger.Named("scale"))),
	}
	if err := Populate(c.Units, c.Scales); err != nil {
		return nil, err
	}
	logger.Debug("standard catalog populated",
		zap.Int("units", c.Units.Len()),
		zap.Int("scales", c.Scales.Len()))
	return c, nil
}

// Unit returns the unit with a standard identifier, nil when absent
func (c *Catalog) Unit(id string) *unit.Unit {
	u, _ := c.Units.WithIdentifier(label.Identifier(id))
	return u
}

// Scale returns the scale with a standard identifier, nil when absent
func (c *Catalog) Scale(id string) *scale.Scale {
	s, _ := c.Scales.WithIdentifier(label.Identifier(id))
	return s
}

// Populate registers the standard units and scales. Populating a catalog
// twice resolves every request to the units already registered.
func Populate(units *unit.Catalog, scales *scale.Catalog) error {
	b := &builder{units: units, scales: scales}

	second := b.root(asBase(meta(Second, "second", SI, "s")), dimension.Time)
	metre := b.root(asBase(meta(Metre, "metre", SI, "m")), dimension.Length)
	gram := b.root(meta(Gram, "gram", SI, "g"), dimension.Mass)
	kilogram := b.prefixed(asBase(meta(Kilogram, "", SI)), prefix.Kilo, gram)
	b.root(asBase(meta(Ampere, "ampere", SI, "A")), dimension.Current)
	kelvin := b.root(asBase(meta(Kelvin, "kelvin", SI, "K")), dimension.Temperature)
	b.root(asBase(meta(Mole, "mole", SI, "mol")), dimension.Amount)
	b.root(asBase(meta(Candela, "candela", SI, "cd")), dimension.Luminosity)
	b.root(asBase(meta(One, "one", SI, "1")), dimension.Dimensionless)

	squareMetre := b.power(asBase(meta(SquareMetre, "square metre", SI)), metre, 2)
	cubicMetre := b.power(asBase(meta(CubicMetre, "cubic metre", SI)), metre, 3)
	b.divide(asBase(meta(MetrePerSecond, "metre per second", SI, "m/s")), metre, second)
	acceleration := b.divide(asBase(meta(MetrePerSecondSquared, "metre per second squared", SI, "m/s2")),
		metre, b.power(anonymous, second, 2))
	b.singular(asBase(meta(Hertz, "hertz", SI, "Hz")), b.power(anonymous, second, -1), 1)
	newton := b.singular(asBase(meta(Newton, "newton", SI, "N")), b.multiply(kilogram, acceleration), 1)
	pascal := b.singular(asBase(meta(Pascal, "pascal", SI, "Pa")), b.divide(anonymous, newton, squareMetre), 1)
	joule := b.singular(asBase(meta(Joule, "joule", SI, "J")), b.multiply(newton, metre), 1)
	watt := b.singular(asBase(meta(Watt, "watt", SI, "W")), b.divide(anonymous, joule, second), 1)
	litre := b.singular(meta(Litre, "litre", "", "l", "L"), cubicMetre, 1e-3)
	gravity := b.singular(meta(StandardAccelerationOfGravity, "standard acceleration of gravity", "", "g_n"), acceleration, 9.80665)

	for _, p := range []struct {
		id, prefixID string
		base         *unit.Unit
	}{
		{Kilometre, prefix.Kilo, metre},
		{Centimetre, prefix.Centi, metre},
		{Millimetre, prefix.Milli, metre},
		{Micrometre, prefix.Micro, metre},
		{Milligram, prefix.Milli, gram},
		{Millisecond, prefix.Milli, second},
		{Kilonewton, prefix.Kilo, newton},
		{Hectopascal, prefix.Hecto, pascal},
		{Kilopascal, prefix.Kilo, pascal},
		{Megapascal, prefix.Mega, pascal},
		{Kilojoule, prefix.Kilo, joule},
		{Kilowatt, prefix.Kilo, watt},
		{Millilitre, prefix.Milli, litre},
	} {
		b.prefixed(meta(p.id, "", SI), p.prefixID, p.base)
	}
	b.singular(meta(Tonne, "tonne", "", "t"), kilogram, 1000)

	inch := b.singular(meta(Inch, "inch", Imperial, "in"), metre, 0.0254)
	foot := b.singular(asBase(meta(Foot, "foot", Imperial, "ft")), inch, 12)
	yard := b.singular(meta(Yard, "yard", Imperial, "yd"), foot, 3)
	mile := b.singular(meta(Mile, "mile", Imperial, "mi"), yard, 1760)
	pound := b.singular(asBase(meta(Pound, "pound", Imperial, "lb")), kilogram, 0.45359237)
	b.singular(meta(Ounce, "ounce", Imperial, "oz"), pound, 1.0/16)
	poundForce := b.singular(meta(PoundForce, "pound-force", Imperial, "lbf"), b.multiply(pound, gravity), 1)
	b.divide(meta(PoundForcePerSquareInch, "pound-force per square inch", Imperial, "psi"),
		poundForce, b.power(anonymous, inch, 2))

	minute := b.singular(meta(Minute, "minute", "", "min"), second, 60)
	hour := b.singular(meta(Hour, "hour", "", "h"), minute, 60)
	b.singular(meta(Day, "day", "", "d"), hour, 24)
	b.divide(meta(KilometrePerHour, "kilometre per hour", "", "km/h"), b.get(Kilometre), hour)
	b.divide(meta(MilePerHour, "mile per hour", Imperial, "mph"), mile, hour)

	celsius := b.singular(meta(DegreeCelsius, "degree Celsius", "", "°C"), kelvin, 1)
	fahrenheit := b.singular(meta(DegreeFahrenheit, "degree Fahrenheit", Imperial, "°F"), kelvin, 1/1.8)

	kelvinScale := b.ratioScale(KelvinScale, "Kelvin scale", kelvin)
	celsiusScale := b.intervalScale(CelsiusScale, "Celsius scale", kelvinScale, celsius, -273.15)
	fahrenheitScale := b.intervalScale(FahrenheitScale, "Fahrenheit scale", kelvinScale, fahrenheit, -459.67)
	b.fixedPoints(kelvinScale, scale.FixedPoint{Label: "absolute zero", Value: 0})
	b.fixedPoints(celsiusScale,
		scale.FixedPoint{Label: "freezing point of water", Value: 0},
		scale.FixedPoint{Label: "boiling point of water", Value: 100})
	b.fixedPoints(fahrenheitScale,
		scale.FixedPoint{Label: "freezing point of water", Value: 32},
		scale.FixedPoint{Label: "boiling point of water", Value: 212})

	return b.err
}
