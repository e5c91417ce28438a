package defs

import (
	"fmt"
	"strconv"
	"strings"
)

// Label joins the non-empty parts with '_' and converts the result to a
// symbol: upper case, with every character outside [A-Z0-9_] replaced.
func Label(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return toSymbol(strings.Join(kept, "_"))
}

func toSymbol(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Hex formats an address the way build headers expect it: 0x-prefixed,
// lower case, no padding.
func Hex(v uint64) string {
	return fmt.Sprintf("%#x", v)
}

// Uint formats an integer definition.
func Uint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// Bool formats a flag definition as 1 or 0.
func Bool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Quote formats a string definition.
func Quote(s string) string {
	return `"` + s + `"`
}
