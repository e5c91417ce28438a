package flash

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by a session matches one of them
// through errors.Is.
var (
	// ErrContract marks misuse of the extraction session: unknown
	// directives and directives processed out of order.
	ErrContract = errors.New("extraction contract violated")

	// ErrMalformed marks hardware descriptions that cannot be decoded.
	ErrMalformed = errors.New("malformed hardware description")
)

// UnsupportedDirectiveError is returned for a directive tag that no
// extractor handles.
type UnsupportedDirectiveError struct {
	Tag  string
	Node string
}

func (e *UnsupportedDirectiveError) Error() string {
	return fmt.Sprintf("unsupported flash directive %q on node %s", e.Tag, e.Node)
}

func (e *UnsupportedDirectiveError) Is(target error) bool { return target == ErrContract }

// MissingFlashDefinitionError is returned when a code partition is
// extracted before any flash node in the same session.
type MissingFlashDefinitionError struct {
	Partition string
	Node      string
}

func (e *MissingFlashDefinitionError) Error() string {
	return fmt.Sprintf("code partition '%s' %s without flash definition", e.Partition, e.Node)
}

func (e *MissingFlashDefinitionError) Is(target error) bool { return target == ErrContract }

// DuplicateFlashError is returned when a second flash node is extracted in
// a session that already recorded one.
type DuplicateFlashError struct {
	Node     string
	Previous string
}

func (e *DuplicateFlashError) Error() string {
	return fmt.Sprintf("flash node %s extracted after flash node %s", e.Node, e.Previous)
}

func (e *DuplicateFlashError) Is(target error) bool { return target == ErrContract }

// MalformedError describes a property that cannot be decoded.
type MalformedError struct {
	Node     string
	Property string
	Reason   string
}

func (e *MalformedError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("node %s: %s", e.Node, e.Reason)
	}
	return fmt.Sprintf("node %s: property %s: %s", e.Node, e.Property, e.Reason)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

func malformed(node, prop, format string, args ...interface{}) error {
	return &MalformedError{Node: node, Property: prop, Reason: fmt.Sprintf(format, args...)}
}
