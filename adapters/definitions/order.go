package definitions

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"om-units/internal/errors"
)

type blockType int

const (
	prefixBlock blockType = iota
	unitBlock
	scaleBlock
)

func (t blockType) String() string {
	switch t {
	case prefixBlock:
		return "prefix"
	case unitBlock:
		return "unit"
	case scaleBlock:
		return "scale"
	default:
		return "block"
	}
}

type blockKey struct {
	typ  blockType
	name string
}

func (k blockKey) String() string {
	return k.typ.String() + " " + `"` + k.name + `"`
}

// blockNode is a definition block in the dependency graph
type blockNode struct {
	id  int64
	key blockKey
}

// ID implements graph.Node
func (n blockNode) ID() int64 { return n.id }

// dependencyGraph orders blocks so that every block comes after the blocks it references.
// Edges point from a dependency to its dependent.
type dependencyGraph struct {
	g     *simple.DirectedGraph
	nodes map[blockKey]blockNode
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{
		g:     simple.NewDirectedGraph(),
		nodes: make(map[blockKey]blockNode),
	}
}

func (d *dependencyGraph) add(typ blockType, name string) (blockNode, error) {
	key := blockKey{typ: typ, name: name}
	if _, exists := d.nodes[key]; exists {
		return blockNode{}, errors.Parsing("duplicate "+key.String(), nil)
	}
	n := blockNode{id: int64(len(d.nodes)), key: key}
	d.g.AddNode(n)
	d.nodes[key] = n
	return n, nil
}

func (d *dependencyGraph) lookup(typ blockType, name string) (blockNode, bool) {
	n, ok := d.nodes[blockKey{typ: typ, name: name}]
	return n, ok
}

// depend records that dependent references ref. References that do not
// name a block are left to the catalogs.
func (d *dependencyGraph) depend(dependent blockNode, typ blockType, ref string) error {
	dep, ok := d.lookup(typ, ref)
	if !ok {
		return nil
	}
	if dep.id == dependent.id {
		return errors.Structural("%s references itself", dependent.key)
	}
	d.g.SetEdge(simple.Edge{F: dep, T: dependent})
	return nil
}

// dependencies returns the blocks dependent references directly
func (d *dependencyGraph) dependencies(dependent blockNode) []blockKey {
	var keys []blockKey
	to := d.g.To(dependent.id)
	for to.Next() {
		keys = append(keys, to.Node().(blockNode).key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// order returns the blocks in dependency order, ties broken by declaration order
func (d *dependencyGraph) order() ([]blockNode, error) {
	sorted, err := topo.SortStabilized(d.g, nil)
	if err != nil {
		unorderable, ok := err.(topo.Unorderable)
		if !ok {
			return nil, errors.Internal("failed to order definitions", err)
		}
		cycles := make([]string, 0, len(unorderable))
		for _, component := range unorderable {
			cycles = append(cycles, describeCycle(component))
		}
		return nil, errors.Structural("definitions form a reference cycle: %s", strings.Join(cycles, "; ")).
			WithContext("cycles", cycles)
	}

	nodes := make([]blockNode, 0, len(sorted))
	for _, n := range sorted {
		nodes = append(nodes, n.(blockNode))
	}
	return nodes, nil
}

func describeCycle(component []graph.Node) string {
	names := make([]string, 0, len(component))
	for _, n := range component {
		names = append(names, n.(blockNode).key.String())
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
