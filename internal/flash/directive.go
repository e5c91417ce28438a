package flash

import (
	"github.com/sirupsen/logrus"
)

// Directive selects the extractor applied to a node.
type Directive int

const (
	DirectiveFlash Directive = iota + 1
	DirectiveCodePartition
)

func (d Directive) String() string {
	switch d {
	case DirectiveFlash:
		return "flash"
	case DirectiveCodePartition:
		return "code-partition"
	}
	return "unknown"
}

// ParseDirective maps a directive tag from the chosen node to a Directive.
func (s *Session) ParseDirective(tag string) (Directive, bool) {
	switch tag {
	case s.cfg.Directives.Flash:
		return DirectiveFlash, true
	case s.cfg.Directives.CodePartition:
		return DirectiveCodePartition, true
	}
	return 0, false
}

// Tag returns the configured tag for d.
func (s *Session) Tag(d Directive) string {
	switch d {
	case DirectiveFlash:
		return s.cfg.Directives.Flash
	case DirectiveCodePartition:
		return s.cfg.Directives.CodePartition
	}
	return ""
}

// Extract runs the extractor selected by tag on the node at path.
// labelPrefix is the definition label of the node, used for forwarded
// properties.
func (s *Session) Extract(path, tag, labelPrefix string) error {
	d, ok := s.ParseDirective(tag)
	if !ok {
		err := &UnsupportedDirectiveError{Tag: tag, Node: path}
		s.log.WithFields(logrus.Fields{"node": path, "directive": tag}).Error(err)
		return err
	}
	return s.ExtractDirective(path, d, labelPrefix)
}

// ExtractDirective is Extract for an already parsed directive.
func (s *Session) ExtractDirective(path string, d Directive, labelPrefix string) error {
	var err error
	switch d {
	case DirectiveFlash:
		err = s.extractFlash(path, labelPrefix)
	case DirectiveCodePartition:
		err = s.extractCodePartition(path)
	default:
		err = &UnsupportedDirectiveError{Tag: d.String(), Node: path}
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{"node": path, "directive": d.String()}).Error(err)
	}
	return err
}
