// Package cmd - conversion commands
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"om-units/core/measure"
	"om-units/core/output"
	"om-units/core/scale"
	"om-units/core/unit"
)

func newConvertCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert a value from one unit to another",
		Long: `Convert a value between two units of the same dimension.

Units are named by identifier, symbol or label.

Examples:
  omconv convert 1.75 m ft
  omconv convert 100 km/h "metre per second"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}
			value, err := parseValue(args[0])
			if err != nil {
				return err
			}
			from, to, err := env.unitPair(args[1], args[2])
			if err != nil {
				return err
			}

			factor, err := unit.ConversionFactor(from, to)
			if err != nil {
				return err
			}
			m := measure.New(value, from)
			if err := m.Convert(to); err != nil {
				return err
			}
			env.logger.Debug("converted",
				zap.String("from", from.DisplayName()),
				zap.String("to", to.DisplayName()),
				zap.Float64("factor", factor))

			return env.render(&output.Result{Conversions: []output.Conversion{{
				Value: value, From: from.DisplayName(), Result: m.Value, To: to.DisplayName(), Factor: factor,
			}}})
		},
	}
}

func newFactorCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "factor <from> <to>",
		Short: "Print the conversion factor between two units",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}
			from, to, err := env.unitPair(args[0], args[1])
			if err != nil {
				return err
			}
			factor, err := unit.ConversionFactor(from, to)
			if err != nil {
				return err
			}
			return env.render(&output.Result{Conversions: []output.Conversion{{
				Value: 1, From: from.DisplayName(), Result: factor, To: to.DisplayName(), Factor: factor,
			}}})
		},
	}
}

func newBaseCmd(opts *globalOptions) *cobra.Command {
	var system string
	cmd := &cobra.Command{
		Use:   "base <value> <unit>",
		Short: "Convert a value to the base units of a system of units",
		Long: `Convert a value to the base units of a system of units.

Compound units are converted to the product, quotient or power of the base
units of their constituents.

Examples:
  omconv base 12.2 psi
  omconv base 2 mi --system Imperial`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}
			value, err := parseValue(args[0])
			if err != nil {
				return err
			}
			from, err := env.units.Resolve(args[1])
			if err != nil {
				return err
			}
			if system == "" {
				system = env.cfg.Catalog.DefaultSystemOfUnits
			}

			m := measure.New(value, from)
			if err := m.ConvertToBaseUnits(system); err != nil {
				return err
			}
			return env.render(&output.Result{Conversions: []output.Conversion{
				conversion(value, from, m),
			}})
		},
	}
	cmd.Flags().StringVarP(&system, "system", "s", "", "system of units (default from config)")
	return cmd
}

func newConvenientCmd(opts *globalOptions) *cobra.Command {
	var (
		system   string
		prefixes bool
	)
	cmd := &cobra.Command{
		Use:   "convenient <value> <unit>",
		Short: "Convert a value to the most readable unit of its dimension",
		Long: `Convert a value to the unit of the same dimension in which it reads best:
the value closest to a power of ten between 1 and 10, preferring singular units.

Examples:
  omconv convenient 1500 m
  omconv convenient 7200 s --prefixes=false
  omconv convenient 5000 m --system Imperial`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}
			value, err := parseValue(args[0])
			if err != nil {
				return err
			}
			from, err := env.units.Resolve(args[1])
			if err != nil {
				return err
			}

			m := measure.New(value, from)
			if err := m.ConvertToConvenientUnits(system, prefixes); err != nil {
				return err
			}
			return env.render(&output.Result{Conversions: []output.Conversion{
				conversion(value, from, m),
			}})
		},
	}
	cmd.Flags().StringVarP(&system, "system", "s", "", "restrict candidates to a system of units")
	cmd.Flags().BoolVar(&prefixes, "prefixes", true, "consider prefixed units")
	return cmd
}

func newPointCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "point <value> <from-scale> <to-scale>",
		Short: "Convert a point between scales, applying offsets",
		Long: `Convert a point between two scales sharing a zero point.

Scales are named by identifier or label.

Examples:
  omconv point 100 "Celsius scale" "Fahrenheit scale"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}
			value, err := parseValue(args[0])
			if err != nil {
				return err
			}
			from, err := env.scales.Resolve(args[1])
			if err != nil {
				return err
			}
			to, err := env.scales.Resolve(args[2])
			if err != nil {
				return err
			}

			factor, err := scale.ConversionFactor(from, to)
			if err != nil {
				return err
			}
			offset, err := scale.ConversionOffset(from, to)
			if err != nil {
				return err
			}
			p := measure.NewPoint(value, from)
			if err := p.Convert(to); err != nil {
				return err
			}
			return env.render(&output.Result{Conversions: []output.Conversion{{
				Value: value, From: from.Unit().DisplayName(), Result: p.Value, To: to.Unit().DisplayName(),
				Factor: factor, Offset: offset,
			}}})
		},
	}
}

func (e *environment) unitPair(from, to string) (*unit.Unit, *unit.Unit, error) {
	f, err := e.units.Resolve(from)
	if err != nil {
		return nil, nil, err
	}
	t, err := e.units.Resolve(to)
	if err != nil {
		return nil, nil, err
	}
	return f, t, nil
}

func conversion(value float64, from *unit.Unit, converted *measure.Measure) output.Conversion {
	c := output.Conversion{
		Value:  value,
		From:   from.DisplayName(),
		Result: converted.Value,
		To:     converted.Unit.DisplayName(),
	}
	if f, ok := unit.TryConversionFactor(from, converted.Unit); ok {
		c.Factor = f
	}
	return c
}
