package flash

import (
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/dtflash/internal/config"
	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
	"github.com/robert-at-pretension-io/dtflash/internal/props"
)

// nrf52Board is a memory-mapped flash with a partition table.
const nrf52Board = `
/:
  props: {"#address-cells": 1, "#size-cells": 1}
/chosen:
  props:
    zephyr,flash: /soc/flash-controller@4001e000/flash@0
    zephyr,code-partition: /soc/flash-controller@4001e000/flash@0/partitions/partition@c000
/soc:
  compatible: ["simple-bus"]
  props:
    "#address-cells": 1
    "#size-cells": 1
    ranges: true
/soc/flash-controller@4001e000:
  compatible: ["nordic,nrf52-flash-controller"]
  props:
    reg: [0x4001e000, 0x1000]
    "#address-cells": 1
    "#size-cells": 1
    label: NRF_FLASH_DRV_NAME
/soc/flash-controller@4001e000/flash@0:
  compatible: ["soc-nv-flash"]
  props:
    reg: [0x0, 0x80000]
    label: NRF_FLASH
    write-block-size: 4
    erase-block-size: 4096
/soc/flash-controller@4001e000/flash@0/partitions:
  compatible: ["fixed-partitions"]
  props: {"#address-cells": 1, "#size-cells": 1}
/soc/flash-controller@4001e000/flash@0/partitions/partition@0:
  props: {label: mcuboot, reg: [0x0, 0xc000]}
/soc/flash-controller@4001e000/flash@0/partitions/partition@c000:
  props: {label: image-0, reg: [0xc000, 0x32000]}
/soc/flash-controller@4001e000/flash@0/partitions/partition@70000:
  props: {label: storage, reg: [0x70000, 0x2000, 0x72000, 0x4000], read-only: true}
`

// wideBusBoard puts a flash behind a two-cell bus with a ranges window.
const wideBusBoard = `
/:
  props: {"#address-cells": 1, "#size-cells": 1}
/soc:
  props:
    "#address-cells": 2
    "#size-cells": 2
    ranges: [0x0, 0x0, 0x10000000, 0x0, 0x10000000]
/soc/flash@1000:
  compatible: ["soc-nv-flash"]
  props:
    reg: [0x0, 0x1000, 0x0, 0x100500]
`

// spiBoards has a QSPI controller with a memory window and a plain SPI
// controller without one.
const spiBoards = `
/:
  props: {"#address-cells": 1, "#size-cells": 1}
/soc:
  props: {"#address-cells": 1, "#size-cells": 1}
/soc/qspi@40029000:
  compatible: ["nordic,nrf-qspi"]
  props:
    reg: [0x40029000, 0x1000, 0x12000000, 0x8000000]
    "#address-cells": 1
    "#size-cells": 0
/soc/qspi@40029000/mx25r6435f@0:
  compatible: ["nordic,qspi-nor"]
  props: {reg: 0, label: MX25R64, write-block-size: 1}
/soc/spi@40003000:
  compatible: ["nordic,nrf-spi"]
  props:
    reg: [0x40003000, 0x1000]
    "#address-cells": 1
    "#size-cells": 0
/soc/spi@40003000/w25q16@0:
  compatible: ["jedec,spi-nor"]
  props: {reg: 0, label: W25Q16}
`

type harness struct {
	graph   *devicetree.Graph
	sink    *defs.Sink
	session *Session
}

func newHarness(t *testing.T, doc string) *harness {
	t.Helper()
	g, err := devicetree.LoadYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	sink := defs.NewSink()
	return &harness{
		graph:   g,
		sink:    sink,
		session: NewSession(config.DefaultConfig(), g, sink, props.New(g, sink), nil),
	}
}

func (h *harness) expect(t *testing.T, want map[string]string) {
	t.Helper()
	for label, value := range want {
		got, ok := h.sink.Lookup(label)
		if !ok {
			t.Fatalf("%s not defined", label)
		}
		if got != value {
			t.Fatalf("%s = %q, want %q", label, got, value)
		}
	}
}
