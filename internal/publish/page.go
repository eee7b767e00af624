package publish

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dgallion1/specxref/internal/confsummary"
	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/htmldoc"
	"github.com/dgallion1/specxref/internal/metrics"
	"github.com/dgallion1/specxref/internal/sectionnum"
	"github.com/dgallion1/specxref/internal/toc"
)

const defaultReferencesTitle = "References"

// Page is one output page handed to the engine.
type Page struct {
	// Source names the file the content came from; its extension selects the format
	// when Format is empty.
	Source      string
	Format      htmldoc.Format
	Content     []byte
	LogicalName string
	IG          string
	// Anchor reseeds the logical page's tracker, see numbering.Tracker.Start.
	Anchor      string
	Link        string
	Level       int
	Status      toc.Status
	Conformance bool
}

// Output is the processed page.
type Output struct {
	Link            string        `json:"link"`
	HTML            string        `json:"html"`
	Status          toc.Status    `json:"status,omitempty"`
	Headings        int           `json:"headings"`
	TocEntries      int           `json:"toc_entries"`
	ExternalLinks   int           `json:"external_links"`
	Statements      int           `json:"conformance_statements"`
	ReferenceBlocks int           `json:"reference_blocks"`
	Duration        time.Duration `json:"duration_ns"`
}

// ProcessPage numbers one page and fills in its reference blocks and conformance
// summary. Pages are processed strictly one after another.
func (r *Run) ProcessPage(p Page) (Output, error) {
	start := time.Now()
	out, err := r.processPage(p)
	d := time.Since(start)
	out.Duration = d

	ns := metrics.Namespace(p.IG)
	r.stats.Record(d, err != nil)
	r.rec.ObservePage(ns, d, outcomeOf(err))
	r.pages++

	if err != nil {
		r.log.Error("page failed", "page", p.Link, "namespace", ns, "error", err)
		return out, err
	}
	r.log.Info("page processed",
		"page", p.Link,
		"namespace", ns,
		"headings", out.Headings,
		"toc_entries", out.TocEntries,
		"duration_ms", d.Milliseconds(),
	)
	return out, nil
}

func (r *Run) processPage(p Page) (Output, error) {
	out := Output{Link: p.Link}
	if p.Link == "" {
		return out, fmt.Errorf("page %q has no output link", p.LogicalName)
	}

	format := p.Format
	if format == "" && p.Source != "" {
		f, err := htmldoc.FormatFor(p.Source)
		if err != nil {
			return out, err
		}
		format = f
	}
	src, err := htmldoc.ToHTML(format, p.Content)
	if err != nil {
		return out, fmt.Errorf("convert %s: %w", p.Source, err)
	}
	if format == htmldoc.FormatMarkdown {
		r.log.Debug("converted markdown page", "page", p.Link, "headings", len(htmldoc.MarkdownHeadings(p.Content)))
	}

	tr, err := r.Tracker(p.LogicalName, p.IG)
	if err != nil {
		return out, err
	}

	if err := htmldoc.Check(p.Link, src); err != nil {
		return out, failure.Annotate(r.dumper, err, src)
	}
	doc, err := htmldoc.Parse(src)
	if err != nil {
		return out, failure.Annotate(r.dumper, failure.Structure(p.Link, "parse", err), src)
	}
	body := doc.Body()

	out.Status = p.Status
	if out.Status == "" {
		out.Status = sectionnum.DetectStatus(body)
	}

	reg := r.Registry(p.IG)
	tr.Start(p.Anchor)
	res, err := r.numberer.NumberNode(body, tr, reg, sectionnum.Page{
		Link:   p.Link,
		Level:  p.Level,
		Status: out.Status,
	})
	if err != nil {
		return out, failure.Annotate(r.dumper, err, src)
	}
	out.Headings = res.Headings
	out.TocEntries = res.Registered
	out.ExternalLinks = res.ExternalLinks

	blocks, err := r.fillReferences(body)
	if err != nil {
		return out, fmt.Errorf("page %s: %w", p.Link, err)
	}
	out.ReferenceBlocks = blocks

	if p.Conformance {
		n, err := confsummary.Scan(p.Link, body)
		if err != nil {
			return out, failure.Annotate(r.dumper, err, src)
		}
		out.Statements = n
		r.rec.AddConformanceStatements(n)
	}

	rendered, err := doc.Render()
	if err != nil {
		return out, failure.Annotate(r.dumper, failure.Structure(p.Link, "render", err), src)
	}
	if err := htmldoc.Check(p.Link, rendered); err != nil {
		return out, failure.Annotate(r.dumper, fmt.Errorf("serialized page is malformed: %w", err), rendered)
	}

	// Sections become visible in the TOC only once the page is known to be written.
	if err := res.Commit(reg); err != nil {
		return out, err
	}
	out.HTML = rendered
	return out, nil
}

// fillReferences replaces the content of every <div data-references="Entity"> with the
// rendered backlinks of that entity.
func (r *Run) fillReferences(root *html.Node) (int, error) {
	var holders []*html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && htmldoc.HasAttr(n, "data-references") {
			holders = append(holders, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(root)

	for _, h := range holders {
		entity := strings.TrimSpace(htmldoc.Attr(h, "data-references"))
		title := htmldoc.Attr(h, "data-title")
		if title == "" {
			title = defaultReferencesTitle
		}
		block, err := r.References(entity).Render(title, entity)
		if err != nil {
			return 0, fmt.Errorf("references to %s: %w", entity, err)
		}
		nodes, err := html.ParseFragment(strings.NewReader(block), h)
		if err != nil {
			return 0, fmt.Errorf("parse references to %s: %w", entity, err)
		}
		for c := h.FirstChild; c != nil; c = h.FirstChild {
			h.RemoveChild(c)
		}
		for _, n := range nodes {
			h.AppendChild(n)
		}
	}
	return len(holders), nil
}

func outcomeOf(err error) metrics.Outcome {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case failure.IsConfiguration(err):
		return metrics.OutcomeConfiguration
	case failure.IsStructure(err):
		return metrics.OutcomeStructure
	default:
		return metrics.OutcomeFailed
	}
}
