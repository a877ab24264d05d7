package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"om-units/adapters/definitions"
	"om-units/core/determinism"
	"om-units/core/output"
	"om-units/core/prefix"
	"om-units/core/scale"
	"om-units/core/standard"
	"om-units/core/unit"
	"om-units/internal/config"
	"om-units/internal/logging"
)

// environment holds the catalogs and output settings of one invocation
type environment struct {
	cfg       *config.Config
	units     *unit.Catalog
	scales    *scale.Catalog
	formatter output.Formatter
	out       io.Writer
	logger    *zap.Logger
}

// newEnvironment builds the catalogs from the configuration and the global flags
func newEnvironment(cmd *cobra.Command, opts *globalOptions) (*environment, error) {
	cfg := config.Get()
	logger := logging.Named("omconv")

	precision := cfg.Output.Precision
	if opts.precision >= 0 {
		precision = opts.precision
	}
	format := cfg.Output.Format
	if opts.format != "" {
		format = opts.format
	}
	formatter, err := output.NewRegistry(int32(precision), cfg.Output.NoColor).Get(output.Format(format))
	if err != nil {
		return nil, err
	}

	unitOpts := []unit.Option{
		unit.WithPrefixes(prefix.NewStandardRegistry()),
		unit.WithTolerances(cfg.Catalog.IdentityTolerance, cfg.Catalog.DuplicateTolerance),
	}

	env := &environment{
		cfg:       cfg,
		formatter: formatter,
		out:       cmd.OutOrStdout(),
		logger:    logger,
	}
	if cfg.Catalog.LoadStandard && !opts.noStandard {
		c, err := standard.New(logger, unitOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load standard units: %w", err)
		}
		env.units, env.scales = c.Units, c.Scales
	} else {
		env.units = unit.NewCatalog(append(unitOpts, unit.WithLogger(logger.Named("unit")))...)
		env.scales = scale.NewCatalog(scale.WithLogger(logger.Named("scale")))
	}

	files := append(append([]string{}, cfg.Catalog.Definitions...), opts.definitions...)
	if len(files) > 0 {
		loader := definitions.NewLoader(env.units, env.scales, definitions.WithLogger(logger.Named("definitions")))
		if _, err := loader.LoadFiles(files...); err != nil {
			return nil, fmt.Errorf("failed to load definitions: %w", err)
		}
	}

	logger.Debug("catalogs ready",
		zap.Int("units", env.units.Len()),
		zap.Int("scales", env.scales.Len()),
		zap.String("format", format),
		zap.Int("precision", precision))
	return env, nil
}

func (e *environment) render(result *output.Result) error {
	return e.formatter.Render(e.out, result)
}

// parseValue parses a decimal number argument
func parseValue(s string) (float64, error) {
	a, err := determinism.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return a.Float64(), nil
}
