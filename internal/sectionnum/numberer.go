// Package sectionnum numbers the headings of generated pages, stamps self-link anchors,
// flags external hyperlinks and feeds the numbered sections to a TOC registry.
package sectionnum

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/htmldoc"
	"github.com/dgallion1/specxref/internal/metrics"
	"github.com/dgallion1/specxref/internal/numbering"
	"github.com/dgallion1/specxref/internal/toc"
)

// Config holds the corpus-wide settings of the numberer.
type Config struct {
	// Links below ExtensionsRoot belong to the corpus and are not flagged as external.
	ExtensionsRoot string
	ExternalIcon   string
	SelfLinkGlyph  string
	// Untitled is the TOC title of a heading without text.
	Untitled string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ExtensionsRoot: "http://hl7.org/fhir/extensions",
		ExternalIcon:   "external.png",
		SelfLinkGlyph:  "¶",
		Untitled:       "(untitled)",
	}
}

// Page describes the output page being numbered.
type Page struct {
	Link   string     // output file name, used for self links and TOC entries
	Level  int        // directory depth below the corpus root; 0 for core pages
	Status toc.Status // standards status of the page, copied to its TOC entries
}

// Result counts what one pass changed. Entries holds the TOC entries the pass claims;
// they reach the registry only through Commit.
type Result struct {
	Headings      int
	ExternalLinks int
	Registered    int
	Entries       []toc.Entry
}

// Commit registers the entries of a successful pass in reg. Either all of them are
// registered or, on a duplicate under the Reject policy, none.
func (r Result) Commit(reg *toc.Registry) error {
	if reg == nil {
		return nil
	}
	return reg.RegisterAll(r.Entries)
}

// Numberer is the tree-walking section number injector.
type Numberer struct {
	cfg    Config
	log    *slog.Logger
	rec    metrics.Recorder
	dumper failure.Dumper
}

// New creates a Numberer. A nil recorder or dumper disables that concern.
func New(cfg Config, log *slog.Logger, rec metrics.Recorder, dumper failure.Dumper) *Numberer {
	def := DefaultConfig()
	if cfg.ExternalIcon == "" {
		cfg.ExternalIcon = def.ExternalIcon
	}
	if cfg.SelfLinkGlyph == "" {
		cfg.SelfLinkGlyph = def.SelfLinkGlyph
	}
	if cfg.Untitled == "" {
		cfg.Untitled = def.Untitled
	}
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if dumper == nil {
		dumper = failure.NopDumper{}
	}
	return &Numberer{cfg: cfg, log: log, rec: rec, dumper: dumper}
}

// Number checks, parses, numbers and re-serializes src. Sections are registered in reg
// when it is non-nil and the page succeeds. A StructureError carries the location of
// the dumped source.
func (n *Numberer) Number(src string, tr *numbering.Tracker, reg *toc.Registry, page Page) (string, error) {
	if err := htmldoc.Check(page.Link, src); err != nil {
		return "", failure.Annotate(n.dumper, err, src)
	}
	doc, err := htmldoc.Parse(src)
	if err != nil {
		return "", failure.Annotate(n.dumper, failure.Structure(page.Link, "parse", err), src)
	}
	res, err := n.NumberNode(doc.Body(), tr, reg, page)
	if err != nil {
		return "", failure.Annotate(n.dumper, err, src)
	}
	out, err := doc.Render()
	if err != nil {
		return "", failure.Annotate(n.dumper, failure.Structure(page.Link, "render", err), src)
	}
	if err := htmldoc.Check(page.Link, out); err != nil {
		return "", failure.Annotate(n.dumper, fmt.Errorf("serialized page is malformed: %w", err), out)
	}
	if err := res.Commit(reg); err != nil {
		return "", err
	}
	return out, nil
}

// NumberNode runs the numbering walk over an already parsed tree, mutating it in place.
// reg is only consulted: a section that reg would reject fails the walk, and the
// claimed entries are returned for Result.Commit.
func (n *Numberer) NumberNode(root *html.Node, tr *numbering.Tracker, reg *toc.Registry, page Page) (Result, error) {
	w := &walker{
		n:        n,
		tr:       tr,
		reg:      reg,
		page:     page,
		owner:    tr.Namespace() + "/" + tr.Name(),
		base:     path.Base(page.Link),
		iconPath: strings.Repeat("../", max(page.Level, 0)) + n.cfg.ExternalIcon,
	}
	err := w.walk(root)

	ns := metrics.Namespace(tr.Namespace())
	n.rec.AddHeadings(ns, w.res.Headings)
	n.rec.AddTocEntries(ns, w.res.Registered)
	n.rec.AddExternalLinks(w.res.ExternalLinks)
	if err != nil {
		return w.res, err
	}
	n.log.Debug("numbered page",
		"page", page.Link,
		"namespace", ns,
		"headings", w.res.Headings,
		"toc_entries", w.res.Registered,
		"external_links", w.res.ExternalLinks,
	)
	return w.res, nil
}

type walker struct {
	n        *Numberer
	tr       *numbering.Tracker
	reg      *toc.Registry
	page     Page
	owner    string
	base     string
	iconPath string
	res      Result
}

func (w *walker) walk(node *html.Node) error {
	// Children are captured before the node is mutated so that inserted nodes are
	// never visited.
	kids := htmldoc.Children(node)

	if node.Type == html.ElementNode {
		if node.Data == "div" && htmldoc.HasClass(node, "sidebar") {
			return nil
		}
		if node.Data == "a" {
			w.annotateExternal(node)
		}
		if level := htmldoc.HeadingLevel(node.Data); level > 0 {
			if err := w.number(node, level); err != nil {
				return err
			}
		}
	}

	for _, c := range kids {
		if err := w.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) annotateExternal(a *html.Node) {
	if !IsExternal(a, w.n.cfg.ExtensionsRoot) || hasExternalIcon(a) {
		return
	}
	a.AppendChild(htmldoc.Element("img",
		"src", w.iconPath,
		"alt", "external link",
		"class", externalIconClass,
	))
	w.res.ExternalLinks++
}

func (w *walker) number(h *html.Node, level int) error {
	if cls := strings.TrimSpace(htmldoc.Attr(h, "class")); cls != "" {
		return failure.Structure(w.page.Link,
			fmt.Sprintf("<%s> already has class %q, cannot mark it %s", h.Data, cls, selfLinkParentClass), nil)
	}

	num, err := w.tr.Next(level)
	if err != nil {
		return failure.Structure(w.page.Link, "number heading", err)
	}
	w.res.Headings++

	title := htmldoc.TextContent(h)
	if title == "" {
		title = w.n.cfg.Untitled
	}

	anchor, manual := "", false
	if h.Parent != nil {
		sibs := htmldoc.Children(h.Parent)
		for i, s := range sibs {
			if s == h {
				anchor, manual = PrecedingAnchor(sibs, i)
				break
			}
		}
	}
	if !manual {
		anchor = string(num)
	}

	if w.reg != nil {
		entry := toc.Entry{Section: num, Title: title, Link: w.page.Link, Anchor: anchor, Status: w.page.Status, Owner: w.owner}
		if err := w.reg.Check(entry); err != nil {
			return err
		}
		if w.reg.Claimed(entry) {
			w.res.Entries = append(w.res.Entries, entry)
			w.res.Registered++
		}
	}

	span := htmldoc.Element("span", "class", "sectioncount")
	span.AppendChild(htmldoc.Text(string(num) + " "))
	if !manual {
		span.AppendChild(htmldoc.Element("a", "name", string(num)))
	}
	h.InsertBefore(span, h.FirstChild)

	self := htmldoc.Element("a",
		"href", w.base+"#"+anchor,
		"title", "link to here",
		"class", "self-link",
	)
	self.AppendChild(htmldoc.Text(w.n.cfg.SelfLinkGlyph))
	h.AppendChild(self)
	htmldoc.SetAttr(h, "class", selfLinkParentClass)

	w.n.log.Debug("numbered heading", "page", w.page.Link, "section", string(num), "anchor", anchor)
	return nil
}

const (
	selfLinkParentClass = "self-link-parent"
	externalIconClass   = "external-link"
)
