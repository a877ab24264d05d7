package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"om-units/core/output"
	"om-units/internal/config"
	"om-units/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.Set(config.Default())
	t.Cleanup(func() { config.Set(config.Default()) })

	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, args ...string) *output.Result {
	t.Helper()
	out, err := run(t, append(args, "--format", "json")...)
	require.NoError(t, err)

	var result output.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return &result
}

func TestConversionCommands(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		result float64
		to     string
		delta  float64
	}{
		{name: "convert", args: []string{"convert", "1.75", "m", "ft"}, result: 5.74147, to: "ft", delta: 1e-5},
		{name: "convert by label", args: []string{"convert", "100", "km/h", "metre per second"}, result: 27.7777778, to: "m/s", delta: 1e-6},
		{name: "factor", args: []string{"factor", "psi", "Pa"}, result: 6894.757293, to: "Pa", delta: 1e-5},
		{name: "base", args: []string{"base", "12.2", "psi"}, result: 84116, to: "Pa", delta: 1},
		{name: "base imperial", args: []string{"base", "2", "mi", "--system", "Imperial"}, result: 10560, to: "ft", delta: 1e-9},
		{name: "convenient", args: []string{"convenient", "1500", "m"}, result: 1.5, to: "km", delta: 1e-12},
		{name: "convenient without prefixes", args: []string{"convenient", "7200", "s", "--prefixes=false"}, result: 2, to: "h", delta: 1e-12},
		{name: "point", args: []string{"point", "100", "Celsius scale", "Fahrenheit scale"}, result: 212, to: "°F", delta: 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := runJSON(t, tt.args...)
			require.Len(t, result.Conversions, 1)
			assert.InDelta(t, tt.result, result.Conversions[0].Result, tt.delta)
			assert.Equal(t, tt.to, result.Conversions[0].To)
		})
	}
}

func TestCLIOutput(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	cfg := config.Default()
	cfg.Output.NoColor = true
	cfg.Output.Precision = 5
	require.NoError(t, cfg.Save(cfgPath))

	out, err := run(t, "--config", cfgPath, "convert", "1.75", "m", "ft")
	require.NoError(t, err)
	assert.Equal(t, "1.75 m = 5.74147 ft\n", out)

	out, err = run(t, "--config", cfgPath, "--precision", "2", "convert", "1.75", "m", "ft")
	require.NoError(t, err)
	assert.Equal(t, "1.75 m = 5.74 ft\n", out)
}

func TestUnitsCommand(t *testing.T) {
	result := runJSON(t, "units", "--like", "km/h")

	symbols := make([]string, 0, len(result.Units))
	for _, u := range result.Units {
		symbols = append(symbols, u.Symbol)
	}
	assert.Contains(t, symbols, "m/s")
	assert.Contains(t, symbols, "mph")
	assert.NotContains(t, symbols, "m")

	imperial := runJSON(t, "units", "--system", "Imperial")
	for _, u := range imperial.Units {
		assert.Equal(t, "Imperial", u.System, u.Symbol)
	}

	scales := runJSON(t, "scales")
	assert.Len(t, scales.Scales, 3)
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", "--unit", "psi")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph units")
	assert.Contains(t, out, "poundForcePerSquareInch")
}

func TestDefinitionsFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nautical.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
unit "nautical_mile" {
  label     = "nautical mile"
  symbol    = "nmi"
  base_unit = "m"
  factor    = 1852
}
`), 0644))

	result := runJSON(t, "--definitions", path, "convert", "2", "nmi", "km")
	require.Len(t, result.Conversions, 1)
	assert.InDelta(t, 3.704, result.Conversions[0].Result, 1e-9)

	_, err := run(t, "--no-standard", "--definitions", path, "convert", "1", "nmi", "km")
	assert.True(t, errors.IsType(err, errors.TypeNotFound), "got %v", err)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		typ  errors.Type
	}{
		{name: "dimension mismatch", args: []string{"convert", "1", "m", "s"}, typ: errors.TypeDimensionalMismatch},
		{name: "unknown unit", args: []string{"convert", "1", "m", "furlong"}, typ: errors.TypeNotFound},
		{name: "unknown format", args: []string{"--format", "xml", "convert", "1", "m", "ft"}, typ: errors.TypeInvalidArgument},
		{name: "no base unit", args: []string{"base", "1", "h", "--system", "Imperial"}, typ: errors.TypeUnitIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.typ), "got %v", err)
		})
	}

	_, err := run(t, "convert", "one", "m", "ft")
	assert.Error(t, err)

	_, err = run(t, "convert", "1", "m")
	assert.Error(t, err)
}

func TestVersionAndConfig(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "omconv version "+Version+"\n", out)

	path := filepath.Join(t.TempDir(), "om", "config.json")
	out, err = run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)

	_, err = run(t, "config", "init", path)
	assert.Error(t, err)

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"default_system_of_units": "SI"`)
}

func TestUnitsWarnsWhenNothingMatches(t *testing.T) {
	config.Set(config.Default())

	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs([]string{"units", "--system", "Gaussian"})
	require.NoError(t, root.Execute())

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "no units match")
}
