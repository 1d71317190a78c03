package version

import "strings"

// token is one separator-delimited piece of a version string.
type token struct {
	text    string
	numeric bool
}

// Structural compares two keys without any external help.
//
// Equal version strings are ordered by revision. Otherwise both versions are
// split on '.', '_' and '-'; numeric tokens compare as integers and sort
// before non-numeric tokens at the same position, non-numeric tokens compare
// lexically, and a sequence that runs out first is the smaller one. Versions
// whose token sequences are identical (e.g. "1.0" and "1_0") are ordered by
// raw string comparison, so distinct versions never compare Equal.
func Structural(a, b Key) Order {
	if a.Version == b.Version {
		return compareInt(a.Revision, b.Revision)
	}
	if o := compareTokens(tokenize(a.Version), tokenize(b.Version)); o != Equal {
		return o
	}
	return Order(strings.Compare(a.Version, b.Version))
}

func tokenize(v string) []token {
	parts := splitVersion(v)
	tokens := make([]token, len(parts))
	for i, p := range parts {
		tokens[i] = token{text: p, numeric: isNumeric(p)}
	}
	return tokens
}

// splitVersion keeps empty pieces so "1..2" stays distinct from "1.2".
func splitVersion(v string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(v); i++ {
		if isSeparator(v[i]) {
			parts = append(parts, v[start:i])
			start = i + 1
		}
	}
	return append(parts, v[start:])
}

func isSeparator(r byte) bool {
	return r == '.' || r == '_' || r == '-'
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func compareTokens(a, b []token) Order {
	for i := 0; i < len(a) && i < len(b); i++ {
		if o := compareToken(a[i], b[i]); o != Equal {
			return o
		}
	}
	return compareInt(len(a), len(b))
}

func compareToken(a, b token) Order {
	switch {
	case a.numeric && b.numeric:
		return compareDigits(a.text, b.text)
	case a.numeric:
		return Less
	case b.numeric:
		return Greater
	default:
		return Order(strings.Compare(a.text, b.text))
	}
}

// compareDigits compares decimal strings of any length as integers.
func compareDigits(a, b string) Order {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if o := compareInt(len(a), len(b)); o != Equal {
		return o
	}
	return Order(strings.Compare(a, b))
}
