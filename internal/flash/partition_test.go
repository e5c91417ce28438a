package flash

import (
	"errors"
	"testing"

	"github.com/robert-at-pretension-io/dtflash/internal/config"
	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
	"github.com/robert-at-pretension-io/dtflash/internal/props"
)

func partitionSession(t *testing.T, partitionProps map[string]devicetree.Value) (*Session, *defs.Sink) {
	t.Helper()
	g := devicetree.New(
		&devicetree.Node{Path: "/flash@0/partitions", Compatible: []string{"fixed-partitions"}},
		&devicetree.Node{Path: "/flash@0/partitions/partition@0", Props: partitionProps},
	)
	sink := defs.NewSink()
	return NewSession(config.DefaultConfig(), g, sink, props.New(g, sink), nil), sink
}

func TestExtractPartitionSectors(t *testing.T) {
	s, sink := partitionSession(t, map[string]devicetree.Value{
		"label": devicetree.String("storage"),
		"reg":   devicetree.IntList{0, 4096, 4096, 8192},
	})

	if err := s.ExtractPartition("/flash@0/partitions/partition@0"); err != nil {
		t.Fatalf("ExtractPartition failed: %v", err)
	}

	want := map[string]string{
		"FLASH_AREA_STORAGE_LABEL":     `"storage"`,
		"FLASH_AREA_STORAGE_READ_ONLY": "0",
		"FLASH_AREA_STORAGE_OFFSET_0":  "0",
		"FLASH_AREA_STORAGE_SIZE_0":    "4096",
		"FLASH_AREA_STORAGE_OFFSET_1":  "4096",
		"FLASH_AREA_STORAGE_SIZE_1":    "8192",
	}
	for label, value := range want {
		if got, ok := sink.Value(label); !ok || got != value {
			t.Fatalf("%s = %q (%v), want %q", label, got, ok, value)
		}
	}

	aliases := map[string]string{
		"FLASH_AREA_STORAGE_OFFSET": "FLASH_AREA_STORAGE_OFFSET_0",
		"FLASH_AREA_STORAGE_SIZE":   "FLASH_AREA_STORAGE_SIZE_0",
	}
	for alias, target := range aliases {
		if got, ok := sink.Alias(alias); !ok || got != target {
			t.Fatalf("alias %s -> %q (%v), want %q", alias, got, ok, target)
		}
	}
	if sink.Len() != len(want) {
		t.Fatalf("expected %d definitions, got %d", len(want), sink.Len())
	}

	layout := s.Layout()
	if len(layout.Partitions) != 1 || len(layout.Partitions[0].Sectors) != 2 {
		t.Fatalf("unexpected layout %+v", layout)
	}
	if dev := layout.Partitions[0].Device; dev != "/flash@0" {
		t.Fatalf("expected partition device /flash@0, got %q", dev)
	}
}

func TestExtractPartitionReadOnly(t *testing.T) {
	s, sink := partitionSession(t, map[string]devicetree.Value{
		"label":     devicetree.String("image-0"),
		"reg":       devicetree.IntList{0xc000, 0x32000},
		"read-only": devicetree.Flag{},
	})
	if err := s.ExtractPartition("/flash@0/partitions/partition@0"); err != nil {
		t.Fatalf("ExtractPartition failed: %v", err)
	}
	if v, _ := sink.Value("FLASH_AREA_IMAGE_0_READ_ONLY"); v != "1" {
		t.Fatalf("expected read-only 1, got %q", v)
	}
	if v, _ := sink.Lookup("FLASH_AREA_IMAGE_0_SIZE"); v != "204800" {
		t.Fatalf("expected size alias to resolve to 204800, got %q", v)
	}
}

func TestExtractPartitionMalformed(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]devicetree.Value
	}{
		{"odd sector list", map[string]devicetree.Value{
			"label": devicetree.String("storage"),
			"reg":   devicetree.IntList{0, 4096, 4096},
		}},
		{"single integer", map[string]devicetree.Value{
			"label": devicetree.String("storage"),
			"reg":   devicetree.Int(4096),
		}},
		{"no sectors", map[string]devicetree.Value{
			"label": devicetree.String("storage"),
			"reg":   devicetree.IntList{},
		}},
		{"missing label", map[string]devicetree.Value{
			"reg": devicetree.IntList{0, 4096},
		}},
		{"missing reg", map[string]devicetree.Value{
			"label": devicetree.String("storage"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sink := partitionSession(t, tt.props)
			err := s.ExtractPartition("/flash@0/partitions/partition@0")
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected malformed error, got %v", err)
			}
			if sink.Len() != 0 {
				t.Fatalf("malformed partition must not emit definitions")
			}
		})
	}
}
