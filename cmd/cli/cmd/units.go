// Package cmd - catalog inspection commands
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"om-units/adapters/graph"
	"om-units/core/output"
	"om-units/core/ui"
	"om-units/core/unit"
)

func newUnitsCmd(opts *globalOptions) *cobra.Command {
	var (
		system string
		like   string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "units",
		Short: "List known units",
		Long: `List the units of the catalog.

Examples:
  omconv units
  omconv units --system Imperial
  omconv units --like km/h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}

			candidates := env.units.All()
			if like != "" {
				ref, err := env.units.Resolve(like)
				if err != nil {
					return err
				}
				candidates = env.units.WithDimensions(ref.Dimensions(), system)
			}

			var listed []*unit.Unit
			for _, u := range candidates {
				if system != "" && u.SystemOfUnits() != system {
					continue
				}
				if !all && !u.Identifier().IsDurable() {
					continue
				}
				listed = append(listed, u)
			}
			if len(listed) == 0 {
				ui.NewWriter(cmd.ErrOrStderr(), env.cfg.Output.NoColor).Warning("no units match")
				return nil
			}
			sort.SliceStable(listed, func(i, j int) bool {
				return listed[i].DisplayName() < listed[j].DisplayName()
			})

			result := &output.Result{
				Title: fmt.Sprintf("Units (%d)", len(listed)),
				Units: make([]output.UnitSummary, 0, len(listed)),
			}
			for _, u := range listed {
				result.Units = append(result.Units, output.SummarizeUnit(u))
			}
			return env.render(result)
		},
	}
	cmd.Flags().StringVarP(&system, "system", "s", "", "only list units of a system of units")
	cmd.Flags().StringVar(&like, "like", "", "only list units of the same dimension as this unit")
	cmd.Flags().BoolVar(&all, "all", false, "include anonymous units")
	return cmd
}

func newScalesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scales",
		Short: "List known scales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}
			result := &output.Result{Title: fmt.Sprintf("Scales (%d)", env.scales.Len())}
			for _, s := range env.scales.All() {
				result.Scales = append(result.Scales, output.SummarizeScale(s))
			}
			return env.render(result)
		},
	}
}

func newGraphCmd(opts *globalOptions) *cobra.Command {
	var of string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the unit derivation graph in DOT format",
		Long: `Print the graph of units and the units they are derived from in
Graphviz DOT format. The graph is checked for derivation cycles first.

Examples:
  omconv graph | dot -Tsvg > units.svg
  omconv graph --unit psi`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, opts)
			if err != nil {
				return err
			}

			var g *graph.Graph
			if of != "" {
				u, err := env.units.Resolve(of)
				if err != nil {
					return err
				}
				g = graph.New()
				g.Add(u)
			} else {
				g = graph.Build(env.units)
			}
			if err := g.Validate(); err != nil {
				return err
			}

			b, err := g.MarshalDOT("units")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(env.out, string(b))
			return err
		},
	}
	cmd.Flags().StringVar(&of, "unit", "", "only print the derivation of this unit")
	return cmd
}
