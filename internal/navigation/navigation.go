// Package navigation resolves the breadcrumb numeral that places a logical page in the
// overall outline. The core corpus and every implementation guide have separate tables.
package navigation

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/numbering"
)

// Index maps logical page names to breadcrumb numerals.
type Index struct {
	Core map[string]string            `yaml:"core"`
	IGs  map[string]map[string]string `yaml:"igs"`
}

// New returns an empty index.
func New() *Index {
	return &Index{
		Core: map[string]string{},
		IGs:  map[string]map[string]string{},
	}
}

// Load reads a YAML navigation file.
func Load(file string) (*Index, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read navigation file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML navigation document and validates every numeral in it.
func Parse(data []byte) (*Index, error) {
	var raw Index
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse navigation: %w", err)
	}
	return FromTables(raw.Core, raw.IGs)
}

// FromTables builds a validated index from already decoded tables, normalizing every
// page name with Key.
func FromTables(core map[string]string, igs map[string]map[string]string) (*Index, error) {
	ix := New()
	ix.Core = normalize(core)
	for ig, table := range igs {
		ix.IGs[ig] = normalize(table)
	}
	if err := ix.Validate(); err != nil {
		return nil, err
	}
	return ix, nil
}

// Merge copies every breadcrumb of other into ix, overwriting existing ones.
func (ix *Index) Merge(other *Index) {
	for name, prefix := range other.Core {
		ix.Set("", name, prefix)
	}
	for ig, table := range other.IGs {
		for name, prefix := range table {
			ix.Set(ig, name, prefix)
		}
	}
}

// Validate checks that every configured breadcrumb is a numeral.
func (ix *Index) Validate() error {
	check := func(ig string, table map[string]string) error {
		names := make([]string, 0, len(table))
		for name := range table {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := numbering.ParseNumeral(table[name]); err != nil {
				return &failure.ConfigurationError{Namespace: ig, LogicalName: name, Reason: err.Error()}
			}
		}
		return nil
	}
	if err := check("", ix.Core); err != nil {
		return err
	}
	for ig, table := range ix.IGs {
		if err := check(ig, table); err != nil {
			return err
		}
	}
	return nil
}

// Set records the breadcrumb of a logical page.
func (ix *Index) Set(ig, logicalName, prefix string) {
	if ig == "" {
		ix.Core[Key(logicalName)] = prefix
		return
	}
	if ix.IGs[ig] == nil {
		ix.IGs[ig] = map[string]string{}
	}
	ix.IGs[ig][Key(logicalName)] = prefix
}

// Prefix returns the breadcrumb numeral of a core page.
func (ix *Index) Prefix(logicalName string) (string, error) {
	return ix.lookup("", ix.Core, logicalName)
}

// IGPrefix returns the breadcrumb numeral of a page inside implementation guide ig.
func (ix *Index) IGPrefix(ig, logicalName string) (string, error) {
	return ix.lookup(ig, ix.IGs[ig], logicalName)
}

// Lookup dispatches to Prefix or IGPrefix.
func (ix *Index) Lookup(ig, logicalName string) (string, error) {
	if ig == "" {
		return ix.Prefix(logicalName)
	}
	return ix.IGPrefix(ig, logicalName)
}

func (ix *Index) lookup(ig string, table map[string]string, logicalName string) (string, error) {
	if p, ok := table[Key(logicalName)]; ok && strings.TrimSpace(p) != "" {
		return p, nil
	}
	return "", failure.NoIndexingHome(ig, logicalName)
}

func normalize(table map[string]string) map[string]string {
	out := make(map[string]string, len(table))
	for name, prefix := range table {
		out[Key(name)] = prefix
	}
	return out
}

// Key normalizes a logical page name or output file name to its lookup key:
// "pages/patient-examples.html" and "patient-examples" share a key.
func Key(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
