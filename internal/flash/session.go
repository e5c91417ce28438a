// Package flash extracts flash geometry and partition tables from the
// reduced hardware graph and records them as definitions.
//
// One Session covers one extraction run. The flash directive must be
// processed before the code-partition directive: the session keeps the
// resolved flash region and the code-partition extractor checks against it.
package flash

import (
	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/dtflash/internal/config"
	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
)

// Graph is the read-only view of the reduced graph used by the extractors.
type Graph interface {
	Node(path string) (*devicetree.Node, bool)
	Paths() []string
	Parent(path string) string
	CellWidths(path string) (addressCells, sizeCells int)
	TranslateAddress(addr uint64, path string, addressCells, sizeCells int) (uint64, error)
}

// Sink receives definitions and aliases keyed by node.
type Sink interface {
	Insert(node string, defs, aliases map[string]string) error
}

// PropertyExtractor turns a single node property into definitions.
type PropertyExtractor interface {
	Extract(path, prop, label string) error
}

// Region is the resolved flash device.
type Region struct {
	// Node is the flash node named by the directive.
	Node string `json:"node"`

	// GeometryNode is the node whose reg supplied Base and Size. For a SPI
	// flash with a memory window this is the SPI controller.
	GeometryNode string `json:"geometry_node"`

	Base uint64 `json:"base"`
	Size uint64 `json:"size"`

	// MMIO is false for the no-controller sentinel and for SPI flash
	// without a memory-mapped window.
	MMIO bool `json:"mmio"`
}

// CodePartition is the resolved load location of the application image.
type CodePartition struct {
	Node   string `json:"node"`
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
}

// Sector is one (offset, size) entry of a partition.
type Sector struct {
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
}

// Partition is one entry of a partition table.
type Partition struct {
	Node string `json:"node"`

	// Device is the flash node owning the partition table, the parent of
	// the fixed-partitions node. Sector offsets are relative to it.
	Device string `json:"device"`

	Name     string   `json:"name"`
	ReadOnly bool     `json:"read_only"`
	Sectors  []Sector `json:"sectors"`
}

// Layout is everything a session resolved.
type Layout struct {
	Flash         *Region        `json:"flash,omitempty"`
	CodePartition *CodePartition `json:"code_partition,omitempty"`
	Partitions    []Partition    `json:"partitions"`
}

// Session is the context of one extraction run. It is not safe for
// concurrent use.
type Session struct {
	cfg   *config.Config
	graph Graph
	sink  Sink
	props PropertyExtractor
	log   logrus.FieldLogger

	flash         *Region
	codePartition *CodePartition
	partitions    []Partition
}

// NewSession starts an extraction run. A nil logger discards log output.
func NewSession(cfg *config.Config, graph Graph, sink Sink, props PropertyExtractor, log logrus.FieldLogger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Session{
		cfg:   cfg,
		graph: graph,
		sink:  sink,
		props: props,
		log:   log,
	}
}

// Flash returns the flash region recorded by this session, if any.
func (s *Session) Flash() (Region, bool) {
	if s.flash == nil {
		return Region{}, false
	}
	return *s.flash, true
}

// Layout returns a copy of everything resolved so far.
func (s *Session) Layout() Layout {
	out := Layout{Partitions: make([]Partition, 0, len(s.partitions))}
	if s.flash != nil {
		r := *s.flash
		out.Flash = &r
	}
	if s.codePartition != nil {
		cp := *s.codePartition
		out.CodePartition = &cp
	}
	for _, p := range s.partitions {
		cp := p
		cp.Sectors = append([]Sector(nil), p.Sectors...)
		out.Partitions = append(out.Partitions, cp)
	}
	return out
}

func (s *Session) symbol(name string) string {
	return defs.Label(s.cfg.SymbolPrefix, name)
}
