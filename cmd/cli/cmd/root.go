// Package cmd provides the CLI commands for omconv.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"om-units/core/ui"
	"om-units/internal/config"
	"om-units/internal/logging"
)

// Version is the omconv version
const Version = "0.1.0"

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	cfgFile     string
	verbose     bool
	definitions []string
	noStandard  bool
	precision   int
	format      string
}

// NewRootCommand creates the omconv command tree writing to out
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &globalOptions{precision: -1}

	rootCmd := &cobra.Command{
		Use:   "omconv",
		Short: "Convert values between units of measure",
		Long: `omconv converts values between units and scales of measure.

Units are checked for dimensional compatibility and converted through the
units they are derived from, including products, quotients and powers.

Examples:
  omconv convert 1.75 m ft
  omconv convert 12.2 psi Pa
  omconv point 100 "Celsius scale" "Fahrenheit scale"
  omconv units --like km/h`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.om-units/config.json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringArrayVarP(&opts.definitions, "definitions", "d", nil, "HCL definition file to load (repeatable)")
	flags.BoolVar(&opts.noStandard, "no-standard", false, "do not load the standard units")
	flags.IntVar(&opts.precision, "precision", -1, "maximum decimal places printed (default from config)")
	flags.StringVarP(&opts.format, "format", "f", "", "output format (cli, json)")

	rootCmd.AddCommand(newConvertCmd(opts))
	rootCmd.AddCommand(newFactorCmd(opts))
	rootCmd.AddCommand(newBaseCmd(opts))
	rootCmd.AddCommand(newConvenientCmd(opts))
	rootCmd.AddCommand(newPointCmd(opts))
	rootCmd.AddCommand(newUnitsCmd(opts))
	rootCmd.AddCommand(newScalesCmd(opts))
	rootCmd.AddCommand(newGraphCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	if err := NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		ui.NewWriter(os.Stderr, config.Get().Output.NoColor).Error("%v", err)
		return err
	}
	return nil
}

func (o *globalOptions) initConfig() error {
	if o.cfgFile != "" {
		cfg, err := config.Load(o.cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		config.Set(cfg)
	}

	logCfg := config.Get().Logging
	if o.verbose {
		logCfg = logCfg.Verbose()
	}
	if err := logging.Initialize(logCfg); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}
	return nil
}

// newVersionCmd prints version information
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "omconv version %s\n", Version)
		},
	}
}
