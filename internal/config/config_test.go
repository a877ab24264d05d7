package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"om-units/internal/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Catalog.DefaultSystemOfUnits = "Imperial"
	cfg.Catalog.Definitions = []string{"extra.hcl"}
	cfg.Output.Precision = 3
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Imperial", loaded.Catalog.DefaultSystemOfUnits)
	assert.Equal(t, []string{"extra.hcl"}, loaded.Catalog.Definitions)
	assert.Equal(t, 3, loaded.Output.Precision)
	assert.True(t, loaded.Catalog.LoadStandard)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"output":{"format":"json","precision":2}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 1e-5, cfg.Catalog.IdentityTolerance)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{name: "defaults", mutate: func(*Config) {}, valid: true},
		{name: "zero identity tolerance", mutate: func(c *Config) { c.Catalog.IdentityTolerance = 0 }},
		{name: "negative duplicate tolerance", mutate: func(c *Config) { c.Catalog.DuplicateTolerance = -1 }},
		{name: "negative precision", mutate: func(c *Config) { c.Output.Precision = -1 }},
		{name: "unknown format", mutate: func(c *Config) { c.Output.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfig))
		})
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}
