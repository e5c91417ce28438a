package devicetree

import (
	"sort"
	"strings"
)

// Default cell widths when a bus node does not declare them.
const (
	DefaultAddressCells = 2
	DefaultSizeCells    = 1
)

// Node is an entry of the reduced graph, keyed by its full path.
type Node struct {
	Path       string
	Compatible []string
	Props      map[string]Value
}

// Prop returns the named property.
func (n *Node) Prop(name string) (Value, bool) {
	if n == nil || n.Props == nil {
		return nil, false
	}
	v, ok := n.Props[name]
	return v, ok
}

// HasProp reports whether the property is present.
func (n *Node) HasProp(name string) bool {
	_, ok := n.Prop(name)
	return ok
}

// IsCompatible reports whether compat appears in the node's compatible list.
func (n *Node) IsCompatible(compat string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Compatible {
		if c == compat {
			return true
		}
	}
	return false
}

// UnitAddress returns the part of the node name after '@', if any.
func (n *Node) UnitAddress() string {
	name := n.Path[strings.LastIndex(n.Path, "/")+1:]
	if i := strings.IndexByte(name, '@'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// Graph is the read-only reduced hardware description.
type Graph struct {
	nodes map[string]*Node
}

// New builds a graph from a set of nodes. Later nodes with the same path
// replace earlier ones.
func New(nodes ...*Node) *Graph {
	g := &Graph{nodes: make(map[string]*Node, len(nodes))}
	for _, n := range nodes {
		if n.Props == nil {
			n.Props = map[string]Value{}
		}
		g.nodes[n.Path] = n
	}
	return g
}

// Node looks up a node by path.
func (g *Graph) Node(path string) (*Node, bool) {
	n, ok := g.nodes[path]
	return n, ok
}

// Paths returns every node path in sorted order.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Parent returns the parent path of a node. Top-level nodes and the root
// have an empty parent.
func (g *Graph) Parent(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return ""
	}
	return path[:i]
}

// CellWidths returns the #address-cells and #size-cells in effect for the
// node, read from its parent bus.
func (g *Graph) CellWidths(path string) (addressCells, sizeCells int) {
	parent := g.Parent(path)
	if parent == "" {
		parent = "/"
	}
	addressCells, sizeCells = DefaultAddressCells, DefaultSizeCells
	n, ok := g.nodes[parent]
	if !ok {
		return addressCells, sizeCells
	}
	if v, ok := n.Props["#address-cells"].(Int); ok {
		addressCells = int(v)
	}
	if v, ok := n.Props["#size-cells"].(Int); ok {
		sizeCells = int(v)
	}
	return addressCells, sizeCells
}
