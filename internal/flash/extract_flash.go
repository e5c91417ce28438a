package flash

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
)

func (s *Session) extractFlash(path, labelPrefix string) error {
	if s.flash != nil {
		return &DuplicateFlashError{Node: path, Previous: s.flash.Node}
	}

	if path == s.cfg.NoFlashSentinel {
		// systems without a flash controller still get the symbols
		err := s.sink.Insert(path, map[string]string{
			s.symbol("FLASH_BASE_ADDRESS"): defs.Hex(0),
			s.symbol("FLASH_SIZE"):         defs.Uint(0),
		}, nil)
		if err != nil {
			return err
		}
		s.flash = &Region{Node: path, GeometryNode: path}
		s.log.WithField("node", path).Debug("no flash controller")
		return nil
	}

	flashNode, ok := s.graph.Node(path)
	if !ok {
		return malformed(path, "", "flash node not found")
	}

	// A bus without size cells addresses its children by chip select: the
	// flash hangs off a SPI controller and the memory window, if any, is in
	// the controller's reg.
	resolving := path
	addressCells, sizeCells := s.graph.CellWidths(path)
	spi := sizeCells == 0
	if spi {
		resolving = s.graph.Parent(path)
		addressCells, sizeCells = s.graph.CellWidths(resolving)
	}

	node, ok := s.graph.Node(resolving)
	if !ok {
		return malformed(resolving, "", "flash bus node not found")
	}
	v, ok := node.Prop("reg")
	if !ok {
		return malformed(resolving, "reg", "missing on flash node")
	}
	reg, ok := devicetree.Ints(v)
	if !ok {
		return malformed(resolving, "reg", "expected integers, got %s", v)
	}
	tuples, err := DecodeReg(resolving, reg, addressCells, sizeCells)
	if err != nil {
		return err
	}

	region := Region{Node: path, GeometryNode: path}
	if len(tuples) == 1 && spi {
		// the controller only maps its own registers, there is no
		// memory-mapped flash window
		s.log.WithFields(logrus.Fields{
			"node":       path,
			"controller": resolving,
			"compatible": node.Compatible,
		}).Debug("spi flash without mmio window")
	} else {
		// the last tuple is the flash window; earlier ones are the
		// controller's own registers
		last := tuples[len(tuples)-1]
		base, err := s.graph.TranslateAddress(last.Address, resolving, addressCells, sizeCells)
		if err != nil {
			var rerr *devicetree.RangesError
			if errors.As(err, &rerr) {
				return malformed(rerr.Node, "ranges", "%d cells is not a multiple of %d", rerr.Len, rerr.Stride)
			}
			return err
		}

		err = s.sink.Insert(resolving, map[string]string{
			s.symbol("FLASH_BASE_ADDRESS"): defs.Hex(base),
			s.symbol("FLASH_SIZE"):         defs.Uint(last.Size / 1024),
		}, nil)
		if err != nil {
			return err
		}
		region = Region{
			Node:         path,
			GeometryNode: resolving,
			Base:         base,
			Size:         last.Size,
			MMIO:         true,
		}
		s.log.WithFields(logrus.Fields{
			"node":          path,
			"geometry_node": resolving,
			"compatible":    node.Compatible,
			"address_cells": addressCells,
			"size_cells":    sizeCells,
			"base":          defs.Hex(base),
			"size":          last.Size,
		}).Debug("flash extracted")
	}

	for _, prop := range s.cfg.Passthrough {
		if !flashNode.HasProp(prop) {
			continue
		}
		if err := s.props.Extract(path, prop, labelPrefix); err != nil {
			return err
		}
	}

	s.flash = &region
	return nil
}
