package flash

import (
	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
)

func (s *Session) extractCodePartition(path string) error {
	var offset, size uint64

	if path != s.cfg.NoFlashSentinel {
		if s.flash == nil {
			return &MissingFlashDefinitionError{Partition: s.cfg.Directives.CodePartition, Node: path}
		}
		node, ok := s.graph.Node(path)
		if !ok {
			return malformed(path, "", "code partition node not found")
		}
		// a code partition on the flash node itself starts at the flash base
		if path != s.flash.Node {
			v, ok := node.Prop("reg")
			if !ok {
				return malformed(path, "reg", "missing on code partition")
			}
			reg, ok := devicetree.Ints(v)
			if !ok || len(reg) < 2 {
				return malformed(path, "reg", "expected offset and size, got %s", v)
			}
			offset, size = reg[0], reg[1]
		}
	}

	err := s.sink.Insert(path, map[string]string{
		s.symbol("CODE_PARTITION_OFFSET"): defs.Uint(offset),
		s.symbol("CODE_PARTITION_SIZE"):   defs.Uint(size),
	}, nil)
	if err != nil {
		return err
	}

	s.codePartition = &CodePartition{Node: path, Offset: offset, Size: size}
	s.log.WithFields(logrus.Fields{
		"node":   path,
		"offset": offset,
		"size":   size,
	}).Debug("code partition extracted")
	return nil
}
