// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"om-units/internal/errors"
	"om-units/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog contains unit catalog configuration
	Catalog CatalogConfig `json:"catalog"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig contains unit catalog settings
type CatalogConfig struct {
	// IdentityTolerance is the relative tolerance used when a redefinition
	// is compared against an existing unit with the same identifier
	IdentityTolerance float64 `json:"identity_tolerance"`

	// DuplicateTolerance is the tolerance used to detect anonymous duplicates
	DuplicateTolerance float64 `json:"duplicate_tolerance"`

	// DefaultSystemOfUnits is used when converting to base units
	DefaultSystemOfUnits string `json:"default_system_of_units"`

	// LoadStandard populates the catalog with the standard units
	LoadStandard bool `json:"load_standard"`

	// Definitions are HCL definition files loaded after the standard units
	Definitions []string `json:"definitions,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default output format
	Format string `json:"format"`

	// Precision is the number of decimal places printed
	Precision int `json:"precision"`

	// NoColor disables colored terminal output
	NoColor bool `json:"no_color"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			IdentityTolerance:    1e-5,
			DuplicateTolerance:   1e-7,
			DefaultSystemOfUnits: "SI",
			LoadStandard:         true,
		},
		Output: OutputConfig{
			Format:    "cli",
			Precision: 6,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the default configuration file location
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".om-units", "config.json")
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "invalid configuration file "+path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the catalogs cannot work with
func (c *Config) Validate() error {
	if c.Catalog.IdentityTolerance <= 0 {
		return errors.Config("catalog.identity_tolerance must be positive")
	}
	if c.Catalog.DuplicateTolerance <= 0 {
		return errors.Config("catalog.duplicate_tolerance must be positive")
	}
	if c.Output.Precision < 0 {
		return errors.Config("output.precision must not be negative")
	}
	switch c.Output.Format {
	case "cli", "json":
	default:
		return errors.Config("output.format must be cli or json")
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
