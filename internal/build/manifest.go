// Package build drives a publication run from a YAML manifest: it records the backlinks,
// numbers every page and writes the numbered pages and the master TOC to disk.
package build

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/specxref/internal/backlinks"
	"github.com/dgallion1/specxref/internal/htmldoc"
	"github.com/dgallion1/specxref/internal/navigation"
	"github.com/dgallion1/specxref/internal/toc"
)

// Manifest lists the pages and backlinks of one publication.
type Manifest struct {
	// NavigationFile is read first; inline Navigation entries override it.
	NavigationFile string     `yaml:"navigation_file"`
	Navigation     NavTables  `yaml:"navigation"`
	Pages          []PageSpec `yaml:"pages"`
	Links          []LinkSpec `yaml:"links"`

	dir string
	nav *navigation.Index
}

// NavTables is the inline form of a navigation file.
type NavTables struct {
	Core map[string]string            `yaml:"core"`
	IGs  map[string]map[string]string `yaml:"igs"`
}

// PageSpec is one page of the manifest. Only Source is required.
type PageSpec struct {
	Source      string `yaml:"source"`
	Name        string `yaml:"name"`
	IG          string `yaml:"ig"`
	Anchor      string `yaml:"anchor"`
	Output      string `yaml:"output"`
	Level       *int   `yaml:"level"`
	Status      string `yaml:"status"`
	Conformance bool   `yaml:"conformance"`
}

// LinkSpec records that Target references Entity.
type LinkSpec struct {
	Entity  string `yaml:"entity"`
	Type    string `yaml:"type"`
	Target  string `yaml:"target"`
	Link    string `yaml:"link"`
	Display string `yaml:"display"`
	Hint    string `yaml:"hint"`
}

// LoadManifest reads and validates a manifest. Relative paths in it resolve against the
// manifest's directory.
func LoadManifest(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data, filepath.Dir(file))
}

// ParseManifest decodes a manifest whose relative paths resolve against dir.
func ParseManifest(data []byte, dir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.dir = dir

	nav := navigation.New()
	if m.NavigationFile != "" {
		fileNav, err := navigation.Load(m.resolve(m.NavigationFile))
		if err != nil {
			return nil, err
		}
		nav.Merge(fileNav)
	}
	inline, err := navigation.FromTables(m.Navigation.Core, m.Navigation.IGs)
	if err != nil {
		return nil, err
	}
	nav.Merge(inline)
	m.nav = nav

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Nav is the merged navigation index.
func (m *Manifest) Nav() *navigation.Index { return m.nav }

// Dir is the directory relative paths resolve against.
func (m *Manifest) Dir() string { return m.dir }

// SourcePaths lists the resolved page sources.
func (m *Manifest) SourcePaths() []string {
	out := make([]string, 0, len(m.Pages))
	for _, p := range m.Pages {
		out = append(out, m.resolve(p.Source))
	}
	return out
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.dir, p)
}

func (m *Manifest) validate() error {
	outputs := map[string]int{}
	for i := range m.Pages {
		p := &m.Pages[i]
		if p.Source == "" {
			return fmt.Errorf("manifest page %d: source is required", i)
		}
		if !htmldoc.IsSupportedExtension(p.Source) {
			return fmt.Errorf("manifest page %d: unsupported source %s", i, p.Source)
		}
		if _, ok := toc.ParseStatus(p.Status); p.Status != "" && !ok {
			return fmt.Errorf("manifest page %d: unknown status %q", i, p.Status)
		}
		if p.Name == "" {
			p.Name = navigation.Key(p.Source)
		}
		if p.Output == "" {
			p.Output = p.Name + ".html"
			if p.IG != "" {
				p.Output = path.Join(p.IG, p.Output)
			}
		}
		p.Output = path.Clean(filepath.ToSlash(p.Output))
		if strings.HasPrefix(p.Output, "../") || path.IsAbs(p.Output) {
			return fmt.Errorf("manifest page %d: output %s escapes the output directory", i, p.Output)
		}
		if prev, dup := outputs[p.Output]; dup {
			return fmt.Errorf("manifest pages %d and %d both write %s", prev, i, p.Output)
		}
		outputs[p.Output] = i
	}
	for i, l := range m.Links {
		if l.Entity == "" || l.Target == "" {
			return fmt.Errorf("manifest link %d: entity and target are required", i)
		}
		if _, err := backlinks.ParseRefType(l.Type); err != nil {
			return fmt.Errorf("manifest link %d: %w", i, err)
		}
	}
	return nil
}

// level is the directory depth of the page output unless set explicitly.
func (p PageSpec) level() int {
	if p.Level != nil {
		return *p.Level
	}
	return strings.Count(p.Output, "/")
}
