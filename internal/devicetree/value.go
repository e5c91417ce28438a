package devicetree

import (
	"fmt"
	"strings"
)

// Value is a property value in the reduced graph. The set of variants is
// closed: Int, String, Flag and IntList.
type Value interface {
	isValue()
	String() string
}

// Int is a single integer property such as "#address-cells".
type Int uint64

// String is a string property such as "label".
type String string

// Flag is a presence-only property such as "read-only".
type Flag struct{}

// IntList is a flat list of integers such as "reg" or "ranges".
type IntList []uint64

func (Int) isValue()     {}
func (String) isValue()  {}
func (Flag) isValue()    {}
func (IntList) isValue() {}

func (v Int) String() string    { return fmt.Sprintf("%d", uint64(v)) }
func (v String) String() string { return string(v) }
func (Flag) String() string     { return "true" }

func (v IntList) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%#x", n)
	}
	return "<" + strings.Join(parts, " ") + ">"
}

// Ints flattens an integer-valued property into a list. A single Int
// becomes a one-element list. ok is false for strings and flags.
func Ints(v Value) (list []uint64, ok bool) {
	switch t := v.(type) {
	case Int:
		return []uint64{uint64(t)}, true
	case IntList:
		out := make([]uint64, len(t))
		copy(out, t)
		return out, true
	default:
		return nil, false
	}
}
