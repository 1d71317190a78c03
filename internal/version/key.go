// Package version orders package versions.
//
// A Comparator consults an optional external Oracle for authoritative
// ordering and falls back to a deterministic structural comparison when the
// oracle is missing or cannot decide.
package version

import (
	"strconv"
	"strings"
)

// Order is the outcome of comparing two keys.
type Order int

const (
	Less    Order = -1
	Equal   Order = 0
	Greater Order = 1
)

func (o Order) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "order(" + strconv.Itoa(int(o)) + ")"
	}
}

// Invert returns the order seen from the other operand.
func (o Order) Invert() Order {
	return -o
}

// Key is a version string paired with its package revision.
type Key struct {
	Version  string
	Revision int
}

// String renders the key in pkgver form, e.g. "1.2.3_4".
func (k Key) String() string {
	return k.Version + "_" + strconv.Itoa(k.Revision)
}

// ParseKey splits a "version_revision" string at its last underscore.
// A missing or non-numeric revision yields revision 0.
func ParseKey(s string) Key {
	i := strings.LastIndexByte(s, '_')
	if i < 0 {
		return Key{Version: s}
	}
	rev, err := strconv.ParseUint(s[i+1:], 10, 31)
	if err != nil {
		return Key{Version: s[:i]}
	}
	return Key{Version: s[:i], Revision: int(rev)}
}

func compareInt(a, b int) Order {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}
