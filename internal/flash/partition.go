package flash

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
)

// ExtractPartition emits the definitions of one partition node: its label,
// read-only flag, one OFFSET_<i>/SIZE_<i> pair per sector and unindexed
// OFFSET/SIZE aliases for sector 0.
func (s *Session) ExtractPartition(path string) error {
	node, ok := s.graph.Node(path)
	if !ok {
		return malformed(path, "", "partition node not found")
	}

	name, ok := node.Props["label"].(devicetree.String)
	if !ok {
		return malformed(path, "label", "partition needs a string label")
	}
	v, ok := node.Prop("reg")
	if !ok {
		return malformed(path, "reg", "missing on partition")
	}
	sectors, ok := devicetree.Ints(v)
	if !ok {
		return malformed(path, "reg", "expected integers, got %s", v)
	}
	if len(sectors) == 0 {
		return malformed(path, "reg", "partition has no sectors")
	}
	if len(sectors)%2 != 0 {
		return malformed(path, "reg", "unpaired sector entry in %d cells", len(sectors))
	}

	prefix := []string{s.cfg.PartitionPrefix, string(name)}
	sym := func(parts ...string) string {
		return defs.Label(append(append([]string(nil), prefix...), parts...)...)
	}

	readOnly := node.HasProp("read-only")
	out := map[string]string{
		sym("LABEL"):     defs.Quote(string(name)),
		sym("READ_ONLY"): defs.Bool(readOnly),
	}
	part := Partition{
		Node:     path,
		Device:   s.graph.Parent(s.graph.Parent(path)),
		Name:     string(name),
		ReadOnly: readOnly,
	}
	for i := 0; i < len(sectors); i += 2 {
		idx := strconv.Itoa(i / 2)
		out[sym("OFFSET", idx)] = defs.Uint(sectors[i])
		out[sym("SIZE", idx)] = defs.Uint(sectors[i+1])
		part.Sectors = append(part.Sectors, Sector{Offset: sectors[i], Size: sectors[i+1]})
	}
	aliases := map[string]string{
		sym("OFFSET"): sym("OFFSET", "0"),
		sym("SIZE"):   sym("SIZE", "0"),
	}

	if err := s.sink.Insert(path, out, aliases); err != nil {
		return err
	}
	s.partitions = append(s.partitions, part)
	s.log.WithFields(logrus.Fields{
		"node":      path,
		"device":    part.Device,
		"partition": string(name),
		"sectors":   len(part.Sectors),
		"read_only": readOnly,
	}).Debug("partition extracted")
	return nil
}
