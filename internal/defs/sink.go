// Package defs collects the symbolic definitions produced by an extraction
// run. The sink is append-only: a label keeps the first value written to it
// and any later write with a different value is rejected.
package defs

import (
	"fmt"
	"sort"
)

// maxAliasDepth bounds alias chains during Lookup.
const maxAliasDepth = 8

// ConflictError is returned when a label is redefined with a different value
// or used both as a definition and as an alias.
type ConflictError struct {
	Label    string
	Node     string
	Existing string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting definition of %s on %s: already %q, got %q",
		e.Label, e.Node, e.Existing, e.Value)
}

// NodeDefs is the set of definitions and aliases recorded for one node.
type NodeDefs struct {
	Node    string            `json:"node"`
	Defs    map[string]string `json:"defs"`
	Aliases map[string]string `json:"aliases"`
}

// Sink is the definitions accumulator for a single run. It is not safe for
// concurrent use.
type Sink struct {
	nodes   map[string]*NodeDefs
	values  map[string]string
	aliases map[string]string
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{
		nodes:   make(map[string]*NodeDefs),
		values:  make(map[string]string),
		aliases: make(map[string]string),
	}
}

// Insert records definitions and aliases under node. Either map may be nil.
// Nothing is recorded if any entry conflicts.
func (s *Sink) Insert(node string, defs, aliases map[string]string) error {
	for label, value := range defs {
		if err := s.checkDef(node, label, value); err != nil {
			return err
		}
	}
	for label, target := range aliases {
		if err := s.checkAlias(node, label, target); err != nil {
			return err
		}
		if value, ok := defs[label]; ok {
			return &ConflictError{Label: label, Node: node, Existing: value, Value: "alias of " + target}
		}
	}

	nd, ok := s.nodes[node]
	if !ok {
		nd = &NodeDefs{
			Node:    node,
			Defs:    make(map[string]string),
			Aliases: make(map[string]string),
		}
		s.nodes[node] = nd
	}
	for label, value := range defs {
		nd.Defs[label] = value
		s.values[label] = value
	}
	for label, target := range aliases {
		nd.Aliases[label] = target
		s.aliases[label] = target
	}
	return nil
}

func (s *Sink) checkDef(node, label, value string) error {
	if existing, ok := s.values[label]; ok && existing != value {
		return &ConflictError{Label: label, Node: node, Existing: existing, Value: value}
	}
	if target, ok := s.aliases[label]; ok {
		return &ConflictError{Label: label, Node: node, Existing: "alias of " + target, Value: value}
	}
	return nil
}

func (s *Sink) checkAlias(node, label, target string) error {
	if existing, ok := s.aliases[label]; ok && existing != target {
		return &ConflictError{Label: label, Node: node, Existing: "alias of " + existing, Value: "alias of " + target}
	}
	if value, ok := s.values[label]; ok {
		return &ConflictError{Label: label, Node: node, Existing: value, Value: "alias of " + target}
	}
	return nil
}

// Value returns the value of a primary definition.
func (s *Sink) Value(label string) (string, bool) {
	v, ok := s.values[label]
	return v, ok
}

// Alias returns the canonical label an alias points to.
func (s *Sink) Alias(label string) (string, bool) {
	t, ok := s.aliases[label]
	return t, ok
}

// Lookup resolves label through any aliases to a value.
func (s *Sink) Lookup(label string) (string, bool) {
	for i := 0; i < maxAliasDepth; i++ {
		if v, ok := s.values[label]; ok {
			return v, true
		}
		target, ok := s.aliases[label]
		if !ok {
			return "", false
		}
		label = target
	}
	return "", false
}

// Node returns the definitions recorded for node.
func (s *Sink) Node(node string) (NodeDefs, bool) {
	nd, ok := s.nodes[node]
	if !ok {
		return NodeDefs{}, false
	}
	return *nd, true
}

// Len returns the number of primary definitions.
func (s *Sink) Len() int {
	return len(s.values)
}

// Snapshot is a deterministic copy of the sink contents.
type Snapshot struct {
	Nodes []NodeDefs `json:"nodes"`
}

// Snapshot returns every node's definitions ordered by node path.
func (s *Sink) Snapshot() Snapshot {
	paths := make([]string, 0, len(s.nodes))
	for p := range s.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	snap := Snapshot{Nodes: make([]NodeDefs, 0, len(paths))}
	for _, p := range paths {
		nd := s.nodes[p]
		cp := NodeDefs{
			Node:    nd.Node,
			Defs:    make(map[string]string, len(nd.Defs)),
			Aliases: make(map[string]string, len(nd.Aliases)),
		}
		for k, v := range nd.Defs {
			cp.Defs[k] = v
		}
		for k, v := range nd.Aliases {
			cp.Aliases[k] = v
		}
		snap.Nodes = append(snap.Nodes, cp)
	}
	return snap
}
