package devicetree

import "fmt"

// JoinCells reconstructs an integer from big-endian 32-bit cells: the most
// significant word comes first.
func JoinCells(words []uint64) uint64 {
	var v uint64
	n := len(words)
	for i, w := range words {
		v += w << (32 * uint(n-i-1))
	}
	return v
}

// RangesError reports a "ranges" list that does not split into whole
// (child, parent, length) entries.
type RangesError struct {
	Node   string
	Len    int
	Stride int
}

func (e *RangesError) Error() string {
	return fmt.Sprintf("%s: ranges has %d cells, not a multiple of %d", e.Node, e.Len, e.Stride)
}

// TranslateAddress maps a bus-local address of the node at path to a global
// address by walking the "ranges" properties of its ancestors. Each window
// covers [child, child+length).
func (g *Graph) TranslateAddress(addr uint64, path string, addressCells, sizeCells int) (uint64, error) {
	offset, err := g.rangeOffset(addr, path, addressCells, sizeCells)
	if err != nil {
		return 0, err
	}
	return addr + offset, nil
}

// rangeOffset returns the offset contributed by the parent's ranges and
// every bus above it. The walk stops at the first ancestor without ranges.
// Offsets wrap in uint64 so that a parent window below the child window
// still sums to the right address.
func (g *Graph) rangeOffset(addr uint64, path string, addressCells, sizeCells int) (uint64, error) {
	parentPath := g.Parent(path)
	parent, ok := g.nodes[parentPath]
	if !ok {
		return 0, nil
	}
	v, ok := parent.Props["ranges"]
	if !ok {
		return 0, nil
	}
	// an empty ranges flag is an identity mapping
	ranges, _ := Ints(v)

	parentAddressCells, parentSizeCells := g.CellWidths(parentPath)
	stride := addressCells + parentAddressCells + sizeCells

	if stride > 0 && len(ranges)%stride != 0 {
		return 0, &RangesError{Node: parentPath, Len: len(ranges), Stride: stride}
	}

	var offset uint64
	if stride > 0 {
		for i := 0; i < len(ranges); i += stride {
			entry := ranges[i : i+stride]
			childBase := JoinCells(entry[:addressCells])
			parentBase := JoinCells(entry[addressCells : addressCells+parentAddressCells])
			length := JoinCells(entry[addressCells+parentAddressCells:])
			if addr >= childBase && addr-childBase < length {
				offset = parentBase - childBase
				break
			}
		}
	}

	above, err := g.rangeOffset(addr+offset, parentPath, parentAddressCells, parentSizeCells)
	if err != nil {
		return 0, err
	}
	return offset + above, nil
}
