package flash

import (
	"errors"
	"testing"
)

func TestDecodeRegCellWidths(t *testing.T) {
	tests := []struct {
		name         string
		reg          []uint64
		addressCells int
		sizeCells    int
		want         Tuple
	}{
		{"1/1", []uint64{0x4001e000, 0x1000}, 1, 1, Tuple{0x4001e000, 0x1000}},
		{"2/1", []uint64{0x1, 0x00000000, 0x1000}, 2, 1, Tuple{0x100000000, 0x1000}},
		{"1/2", []uint64{0x8000000, 0x1, 0x0}, 1, 2, Tuple{0x8000000, 0x100000000}},
		{"2/2", []uint64{0x0, 0x10000000, 0x0, 0x200000}, 2, 2, Tuple{0x10000000, 0x200000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeReg("/n", tt.reg, tt.addressCells, tt.sizeCells)
			if err != nil {
				t.Fatalf("DecodeReg failed: %v", err)
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("DecodeReg = %+v, want [%+v]", got, tt.want)
			}
		})
	}
}

func TestDecodeRegMultipleTuples(t *testing.T) {
	got, err := DecodeReg("/qspi", []uint64{0x40029000, 0x1000, 0x12000000, 0x8000000}, 1, 1)
	if err != nil {
		t.Fatalf("DecodeReg failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tuples, got %d", len(got))
	}
	// tuples are independent, nothing is summed across them
	if got[1] != (Tuple{0x12000000, 0x8000000}) {
		t.Fatalf("unexpected last tuple %+v", got[1])
	}
}

func TestDecodeRegAddressOnly(t *testing.T) {
	got, err := DecodeReg("/spi/flash@0", []uint64{0}, 1, 0)
	if err != nil {
		t.Fatalf("DecodeReg failed: %v", err)
	}
	if len(got) != 1 || got[0].Size != 0 {
		t.Fatalf("unexpected tuples %+v", got)
	}
}

func TestDecodeRegMalformed(t *testing.T) {
	tests := []struct {
		name         string
		reg          []uint64
		addressCells int
		sizeCells    int
	}{
		{"remainder", []uint64{1, 2, 3}, 1, 1},
		{"empty", nil, 1, 1},
		{"zero stride", []uint64{1}, 0, 0},
		{"too wide", []uint64{1, 2, 3, 4}, 3, 1},
		{"negative", []uint64{1, 2}, -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReg("/n", tt.reg, tt.addressCells, tt.sizeCells)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected malformed error, got %v", err)
			}
		})
	}
}
