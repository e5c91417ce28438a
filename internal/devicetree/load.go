package devicetree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a reduced graph:
//
//	/soc/flash-controller@4001e000:
//	  compatible: ["nordic,nrf52-flash-controller"]
//	  props:
//	    reg: [0x4001e000, 0x1000]
//	    label: NRF_FLASH_DRV_NAME
type document map[string]struct {
	Compatible []string             `yaml:"compatible"`
	Props      map[string]yaml.Node `yaml:"props"`
}

// Load reads a reduced graph from a .yaml, .yml or .json file.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	default:
		return LoadYAML(f)
	}
}

// LoadYAML decodes a reduced graph document.
func LoadYAML(r io.Reader) (*Graph, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding graph: %w", err)
	}

	nodes := make([]*Node, 0, len(doc))
	for path, entry := range doc {
		if !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("node %q: path must be absolute", path)
		}
		n := &Node{
			Path:       path,
			Compatible: entry.Compatible,
			Props:      make(map[string]Value, len(entry.Props)),
		}
		for name, raw := range entry.Props {
			v, err := decodeValue(&raw)
			if err != nil {
				return nil, fmt.Errorf("node %q property %q: %w", path, name, err)
			}
			n.Props[name] = v
		}
		nodes = append(nodes, n)
	}
	return New(nodes...), nil
}

// LoadJSON decodes a reduced graph document written as JSON. JSON is a
// subset of YAML, so the document is handed to the YAML decoder after a
// syntax check that keeps JSON error messages for JSON input.
func LoadJSON(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decoding graph: invalid JSON")
	}
	return LoadYAML(bytes.NewReader(data))
}

func decodeValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return decodeScalar(n)
	case yaml.SequenceNode:
		list := make(IntList, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!int" {
				return nil, fmt.Errorf("line %d: list items must be integers", item.Line)
			}
			var u uint64
			if err := item.Decode(&u); err != nil {
				return nil, fmt.Errorf("line %d: %w", item.Line, err)
			}
			list = append(list, u)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported value kind", n.Line)
	}
}

func decodeScalar(n *yaml.Node) (Value, error) {
	switch n.Tag {
	case "!!int":
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Int(u), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if !b {
			return nil, fmt.Errorf("line %d: flags can only be true", n.Line)
		}
		return Flag{}, nil
	case "!!str":
		return String(n.Value), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported scalar tag %s", n.Line, n.Tag)
	}
}
