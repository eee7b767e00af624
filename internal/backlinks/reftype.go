package backlinks

import (
	"fmt"
	"strings"
)

// RefType classifies why one entity references another.
type RefType int

const (
	Inherits RefType = iota
	ResourceImplements
	PatternImplementedBy
	ResourceReference
	ExtensionReference
	ProfileReference
)

// RefTypes lists every type in render order.
var RefTypes = []RefType{
	Inherits,
	ResourceImplements,
	PatternImplementedBy,
	ResourceReference,
	ExtensionReference,
	ProfileReference,
}

var refTypeNames = map[RefType]string{
	Inherits:             "Inherits",
	ResourceImplements:   "ResourceImplements",
	PatternImplementedBy: "PatternImplementedBy",
	ResourceReference:    "ResourceReference",
	ExtensionReference:   "ExtensionReference",
	ProfileReference:     "ProfileReference",
}

var refTypeLabels = map[RefType]string{
	Inherits:             "Inherited by",
	ResourceImplements:   "Implements",
	PatternImplementedBy: "Implemented by",
	ResourceReference:    "Referenced by resources",
	ExtensionReference:   "Referenced by extensions",
	ProfileReference:     "Referenced by profiles",
}

func (t RefType) String() string {
	if s, ok := refTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("RefType(%d)", int(t))
}

// Label is the caption of the type's list item.
func (t RefType) Label() string {
	return refTypeLabels[t]
}

// ParseRefType parses a type name, ignoring case.
func ParseRefType(s string) (RefType, error) {
	for _, t := range RefTypes {
		if strings.EqualFold(refTypeNames[t], strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown reference type %q", s)
}

// MarshalText encodes the type by name.
func (t RefType) MarshalText() ([]byte, error) {
	if _, ok := refTypeNames[t]; !ok {
		return nil, fmt.Errorf("unknown reference type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name, so manifests and JSON bodies can name types.
func (t *RefType) UnmarshalText(b []byte) error {
	v, err := ParseRefType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
