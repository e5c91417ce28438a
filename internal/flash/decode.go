package flash

import (
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
)

// maxCells is the widest address or size field that fits in a uint64.
const maxCells = 2

// Tuple is one decoded (address, size) entry of a reg property.
type Tuple struct {
	Address uint64
	Size    uint64
}

// DecodeReg splits a reg list into (address, size) tuples using the cell
// widths of the node's bus. Multi-cell fields are big-endian. The list must
// hold a whole number of tuples.
func DecodeReg(node string, reg []uint64, addressCells, sizeCells int) ([]Tuple, error) {
	if addressCells < 0 || sizeCells < 0 || addressCells > maxCells || sizeCells > maxCells {
		return nil, malformed(node, "reg", "unsupported cell widths (%d, %d)", addressCells, sizeCells)
	}
	stride := addressCells + sizeCells
	if stride == 0 {
		return nil, malformed(node, "reg", "bus declares zero address and size cells")
	}
	if len(reg) == 0 {
		return nil, malformed(node, "reg", "empty register list")
	}
	if len(reg)%stride != 0 {
		return nil, malformed(node, "reg", "%d cells is not a multiple of %d address + %d size cells",
			len(reg), addressCells, sizeCells)
	}

	tuples := make([]Tuple, 0, len(reg)/stride)
	for i := 0; i < len(reg); i += stride {
		tuples = append(tuples, Tuple{
			Address: devicetree.JoinCells(reg[i : i+addressCells]),
			Size:    devicetree.JoinCells(reg[i+addressCells : i+stride]),
		})
	}
	return tuples, nil
}
