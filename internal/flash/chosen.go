package flash

import (
	"strings"

	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
)

// ExtractChosen runs the directives named in the chosen node, flash first.
// A graph without a chosen node is not an error.
func (s *Session) ExtractChosen() error {
	chosen, ok := s.graph.Node(s.cfg.ChosenPath)
	if !ok {
		return nil
	}
	for _, d := range []Directive{DirectiveFlash, DirectiveCodePartition} {
		v, ok := chosen.Prop(s.Tag(d))
		if !ok {
			continue
		}
		target, ok := v.(devicetree.String)
		if !ok {
			return malformed(s.cfg.ChosenPath, s.Tag(d), "expected a node path, got %s", v)
		}
		path := string(target)
		if err := s.ExtractDirective(path, d, s.NodeLabel(path)); err != nil {
			return err
		}
	}
	return nil
}

// ExtractPartitions extracts every node whose parent is a partition table,
// in path order.
func (s *Session) ExtractPartitions() error {
	for _, path := range s.graph.Paths() {
		parent, ok := s.graph.Node(s.graph.Parent(path))
		if !ok || !parent.IsCompatible(s.cfg.PartitionsCompatible) {
			continue
		}
		if err := s.ExtractPartition(path); err != nil {
			return err
		}
	}
	return nil
}

// NodeLabel is the definition label of a node: its first compatible and
// unit address. Nodes without a compatible use their path.
func (s *Session) NodeLabel(path string) string {
	node, ok := s.graph.Node(path)
	if !ok || len(node.Compatible) == 0 {
		return defs.Label(strings.TrimPrefix(path, "/"))
	}
	return defs.Label(node.Compatible[0], node.UnitAddress())
}
