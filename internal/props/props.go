// Package props turns individual node properties into definitions.
package props

import (
	"fmt"

	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
)

// Sink receives the generated definitions.
type Sink interface {
	Insert(node string, defs, aliases map[string]string) error
}

// Extractor emits one definition per scalar property, or one per element for
// integer lists.
type Extractor struct {
	graph *devicetree.Graph
	sink  Sink
}

// New returns an extractor reading from graph and writing to sink.
func New(graph *devicetree.Graph, sink Sink) *Extractor {
	return &Extractor{graph: graph, sink: sink}
}

// Extract emits <label>_<PROP> for property prop of the node at path.
// Strings are quoted, flags become 1 and integer lists produce indexed
// definitions <label>_<PROP>_<i>.
func (e *Extractor) Extract(path, prop, label string) error {
	node, ok := e.graph.Node(path)
	if !ok {
		return fmt.Errorf("node %s not found", path)
	}
	v, ok := node.Prop(prop)
	if !ok {
		return fmt.Errorf("node %s has no %s property", path, prop)
	}

	base := defs.Label(label, prop)
	out := make(map[string]string)
	switch t := v.(type) {
	case devicetree.String:
		out[base] = defs.Quote(string(t))
	case devicetree.Int:
		out[base] = defs.Uint(uint64(t))
	case devicetree.Flag:
		out[base] = defs.Bool(true)
	case devicetree.IntList:
		for i, n := range t {
			out[defs.Label(base, fmt.Sprint(i))] = defs.Uint(n)
		}
	}
	return e.sink.Insert(path, out, nil)
}
