// Package graph builds the derivation graph of a unit catalog.
// Every unit points at the units it is directly derived from.
package graph

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"om-units/core/unit"
	"om-units/internal/errors"
)

// EdgeType indicates how a unit uses a constituent
type EdgeType int

const (
	EdgeBase         EdgeType = iota // base unit of a singular, prefixed or multiple unit
	EdgeMultiplier                   // left operand of a product
	EdgeMultiplicand                 // right operand of a product
	EdgeNumerator
	EdgeDenominator
	EdgeExponentBase // base of an exponentiation
)

// String returns the edge type name
func (t EdgeType) String() string {
	names := []string{"base", "multiplier", "multiplicand", "numerator", "denominator", "power"}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// Node is a unit in the derivation graph
type Node struct {
	id   int64
	unit *unit.Unit
}

// ID implements graph.Node
func (n *Node) ID() int64 { return n.id }

// Unit returns the unit of the node
func (n *Node) Unit() *unit.Unit { return n.unit }

// DOTID implements dot.Node
func (n *Node) DOTID() string { return n.unit.Identifier().String() }

// Attributes implements encoding.Attributer
func (n *Node) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{
		{Key: "label", Value: n.unit.DisplayName()},
	}
	if n.unit.IsBaseUnit() {
		attrs = append(attrs, encoding.Attribute{Key: "shape", Value: "box"})
	}
	return attrs
}

// Edge points from a unit to one of its constituents
type Edge struct {
	F, T *Node
	Type EdgeType
}

// From implements graph.Edge
func (e Edge) From() graph.Node { return e.F }

// To implements graph.Edge
func (e Edge) To() graph.Node { return e.T }

// ReversedEdge implements graph.Edge
func (e Edge) ReversedEdge() graph.Edge { return Edge{F: e.T, T: e.F, Type: e.Type} }

// Attributes implements encoding.Attributer
func (e Edge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: e.Type.String()}}
}

// Graph is the derivation graph of a set of units
type Graph struct {
	g     *simple.DirectedGraph
	nodes map[*unit.Unit]*Node
	loops []*Node
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		g:     simple.NewDirectedGraph(),
		nodes: make(map[*unit.Unit]*Node),
	}
}

// Build creates the derivation graph of every unit in the catalog
func Build(c *unit.Catalog) *Graph {
	g := New()
	for _, u := range c.All() {
		g.Add(u)
	}
	return g
}

// Add inserts u and, transitively, the units it is derived from
func (g *Graph) Add(u *unit.Unit) *Node {
	if n, ok := g.nodes[u]; ok {
		return n
	}
	n := &Node{id: int64(len(g.nodes)), unit: u}
	g.nodes[u] = n
	g.g.AddNode(n)

	switch u.Kind() {
	case unit.KindMultiplication:
		g.link(n, g.Add(u.Multiplier()), EdgeMultiplier)
		g.link(n, g.Add(u.Multiplicand()), EdgeMultiplicand)
	case unit.KindDivision:
		g.link(n, g.Add(u.Numerator()), EdgeNumerator)
		g.link(n, g.Add(u.Denominator()), EdgeDenominator)
	case unit.KindExponentiation:
		g.link(n, g.Add(u.BaseUnit()), EdgeExponentBase)
	default:
		if base := u.BaseUnit(); base != nil {
			g.link(n, g.Add(base), EdgeBase)
		}
	}
	return n
}

func (g *Graph) link(from, to *Node, typ EdgeType) {
	if from.id == to.id {
		g.loops = append(g.loops, from)
		return
	}
	// a product of a unit with itself is a single edge
	if g.g.HasEdgeFromTo(from.id, to.id) {
		return
	}
	g.g.SetEdge(Edge{F: from, T: to, Type: typ})
}

// Len returns the number of units in the graph
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node of u
func (g *Graph) Node(u *unit.Unit) (*Node, bool) {
	n, ok := g.nodes[u]
	return n, ok
}

// Constituents returns the units u is directly derived from
func (g *Graph) Constituents(u *unit.Unit) []*unit.Unit {
	n, ok := g.nodes[u]
	if !ok {
		return nil
	}
	return units(g.g.From(n.id))
}

// Dependents returns the units directly derived from u
func (g *Graph) Dependents(u *unit.Unit) []*unit.Unit {
	n, ok := g.nodes[u]
	if !ok {
		return nil
	}
	return units(g.g.To(n.id))
}

// Roots returns the units not derived from any other unit
func (g *Graph) Roots() []*unit.Unit {
	var roots []*unit.Unit
	for u, n := range g.nodes {
		if g.g.From(n.id).Len() == 0 {
			roots = append(roots, u)
		}
	}
	sortUnits(roots)
	return roots
}

// Validate fails when a unit is among its own ancestors
func (g *Graph) Validate() error {
	_, err := g.Order()
	return err
}

// Order returns the units with every unit after the units it is derived from
func (g *Graph) Order() ([]*unit.Unit, error) {
	if len(g.loops) > 0 {
		names := make([]string, 0, len(g.loops))
		for _, n := range g.loops {
			names = append(names, n.unit.DisplayName())
		}
		return nil, errors.Structural("units derived from themselves: %s", strings.Join(names, ", "))
	}

	sorted, err := topo.SortStabilized(g.g, nil)
	if err != nil {
		unorderable, ok := err.(topo.Unorderable)
		if !ok {
			return nil, errors.Internal("failed to order the derivation graph", err)
		}
		cycles := make([]string, 0, len(unorderable))
		for _, component := range unorderable {
			cycles = append(cycles, describe(component))
		}
		return nil, errors.Structural("derivation cycle: %s", strings.Join(cycles, "; ")).
			WithContext("cycles", cycles)
	}

	// edges point at constituents, so the sort lists dependents first
	ordered := make([]*unit.Unit, len(sorted))
	for i, n := range sorted {
		ordered[len(sorted)-1-i] = n.(*Node).unit
	}
	return ordered, nil
}

// MarshalDOT renders the graph in Graphviz DOT format
func (g *Graph) MarshalDOT(name string) ([]byte, error) {
	b, err := dot.Marshal(g.g, name, "", "  ")
	if err != nil {
		return nil, errors.Internal("failed to render the derivation graph", err)
	}
	return b, nil
}

func units(it graph.Nodes) []*unit.Unit {
	var out []*unit.Unit
	for it.Next() {
		out = append(out, it.Node().(*Node).unit)
	}
	sortUnits(out)
	return out
}

func sortUnits(us []*unit.Unit) {
	sort.Slice(us, func(i, j int) bool {
		return us[i].DisplayName() < us[j].DisplayName()
	})
}

func describe(component []graph.Node) string {
	names := make([]string, 0, len(component))
	for _, n := range component {
		names = append(names, n.(*Node).unit.DisplayName())
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
