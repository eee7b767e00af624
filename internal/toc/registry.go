// Package toc collects the numbered sections of a corpus and renders the master Table
// of Contents.
package toc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/specxref/internal/numbering"
)

// Entry is one numbered section. Entries are values; the registry hands out copies.
type Entry struct {
	Section numbering.Numeral `json:"section"`
	Title   string            `json:"title"`
	Link    string            `json:"link"`
	Anchor  string            `json:"anchor"`
	Status  Status            `json:"status,omitempty"`
	// Owner identifies the numbering sequence that produced the entry. A sequence that
	// restarts on a later page may hit its own numbers again; those are not duplicates.
	Owner string `json:"-"`
}

// Href is the link to the section's anchor.
func (e Entry) Href() string {
	anchor := e.Anchor
	if anchor == "" {
		anchor = string(e.Section)
	}
	return e.Link + "#" + anchor
}

// DuplicatePolicy decides what Register does with a section number that is already
// registered.
type DuplicatePolicy string

const (
	// Reject keeps the first entry and returns a DuplicateError.
	Reject DuplicatePolicy = "reject"
	// Replace keeps the last entry written.
	Replace DuplicatePolicy = "replace"
)

// ParseDuplicatePolicy parses a policy name; "" selects Reject.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Reject, nil
	case Reject, Replace:
		return p, nil
	default:
		return "", fmt.Errorf("unknown toc duplicate policy %q (want reject or replace)", s)
	}
}

// DuplicateError reports a second registration of a section number.
type DuplicateError struct {
	Existing Entry
	Rejected Entry
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("toc: section %s already registered by %s (rejected %s)",
		e.Existing.Section, e.Existing.Link, e.Rejected.Link)
}

// Registry is the deduplicated map from section number to entry for one numbering
// namespace. It is owned by a single run and is not safe for concurrent use.
type Registry struct {
	policy  DuplicatePolicy
	entries map[numbering.Numeral]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry(policy DuplicatePolicy) *Registry {
	if policy == "" {
		policy = Reject
	}
	return &Registry{
		policy:  policy,
		entries: make(map[numbering.Numeral]Entry),
	}
}

// Policy returns the duplicate policy of the registry.
func (r *Registry) Policy() DuplicatePolicy { return r.policy }

// Register records e under its section number. A number already held by the same
// owner keeps its first entry and is not an error.
func (r *Registry) Register(e Entry) error {
	if r.ownedBySame(e) {
		return nil
	}
	if err := r.Check(e); err != nil {
		return err
	}
	r.entries[e.Section] = e
	return nil
}

// Check reports the DuplicateError Register would return for e, without registering it.
func (r *Registry) Check(e Entry) error {
	existing, ok := r.entries[e.Section]
	if !ok || r.ownedBySame(e) || r.policy != Reject {
		return nil
	}
	return &DuplicateError{Existing: existing, Rejected: e}
}

// Claimed reports whether Register would add or replace e, as opposed to skipping it
// because its owner already holds the number.
func (r *Registry) Claimed(e Entry) bool { return !r.ownedBySame(e) }

// RegisterAll records entries as one unit: when any of them is rejected, none is
// registered.
func (r *Registry) RegisterAll(entries []Entry) error {
	for _, e := range entries {
		if err := r.Check(e); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) ownedBySame(e Entry) bool {
	existing, ok := r.entries[e.Section]
	return ok && e.Owner != "" && existing.Owner == e.Owner
}

// Has reports whether section is registered.
func (r *Registry) Has(section numbering.Numeral) bool {
	_, ok := r.entries[section]
	return ok
}

// Get returns the entry registered for section.
func (r *Registry) Get(section numbering.Numeral) (Entry, bool) {
	e, ok := r.entries[section]
	return e, ok
}

// Len is the number of registered sections.
func (r *Registry) Len() int { return len(r.entries) }

// All returns every entry ordered by numeral comparison.
func (r *Registry) All() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return numbering.Compare(out[i].Section, out[j].Section) < 0
	})
	return out
}
