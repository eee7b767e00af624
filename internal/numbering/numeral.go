// Package numbering assigns hierarchical outline numbers to the headings of a logical
// document.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

// Numeral is a dotted outline number such as "3.10.2".
type Numeral string

// ParseNumeral validates s as a non-empty sequence of dot-separated decimal segments.
func ParseNumeral(s string) (Numeral, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty numeral")
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return "", fmt.Errorf("numeral %q has an empty segment", s)
		}
		if _, err := strconv.Atoi(seg); err != nil {
			return "", fmt.Errorf("numeral %q has a non-numeric segment %q", s, seg)
		}
	}
	return Numeral(s), nil
}

func (n Numeral) String() string { return string(n) }

func (n Numeral) segments() []string {
	if n == "" {
		return nil
	}
	return strings.Split(string(n), ".")
}

// Depth is the number of segments.
func (n Numeral) Depth() int {
	return len(n.segments())
}

// Parent drops the last segment; the parent of a single-segment numeral is "".
func (n Numeral) Parent() Numeral {
	i := strings.LastIndexByte(string(n), '.')
	if i < 0 {
		return ""
	}
	return n[:i]
}

// HasPrefix reports whether p is a segment-wise prefix of n ("3.1" is a prefix of
// "3.1.2" but not of "3.10").
func (n Numeral) HasPrefix(p Numeral) bool {
	if p == "" {
		return true
	}
	return n == p || strings.HasPrefix(string(n), string(p)+".")
}

// Compare orders numerals segment by segment, numerically: "3.9" < "3.10" and
// "3" < "3.1". Segments that are not numbers compare as strings.
func Compare(a, b Numeral) int {
	as, bs := a.segments(), b.segments()
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func compareSegment(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
