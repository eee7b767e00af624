// Package confsummary links the conformance summary list of a page to the conformance
// statements scattered through it.
package confsummary

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/htmldoc"
)

const (
	summaryID      = "conf-summary"
	statementClass = "fhir-conformance"
	anchorPrefix   = "fcs"
)

var (
	ErrNoSummary         = errors.New(`no <ul id="conf-summary"> on page`)
	ErrMultipleSummaries = errors.New(`more than one <ul id="conf-summary"> on page`)
)

// Scan collects the summary list and every statement below root in document order.
// Statement i is appended to the list as a "§" link to #fcs{i} and is itself turned into
// a hidden anchor target. It returns the number of statements linked.
func Scan(page string, root *html.Node) (int, error) {
	var list *html.Node
	var statements []*html.Node
	var err error

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if err != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "ul" && htmldoc.Attr(n, "id") == summaryID:
				if list != nil {
					err = ErrMultipleSummaries
					return
				}
				list = n
			case n.Data == "span" && htmldoc.HasClass(n, statementClass):
				statements = append(statements, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)

	if err == nil && list == nil {
		err = ErrNoSummary
	}
	if err != nil {
		return 0, failure.Structure(page, "conformance summary", err)
	}

	for i, st := range statements {
		id := fmt.Sprintf("%s%d", anchorPrefix, i)

		li := htmldoc.Element("li")
		link := htmldoc.Element("a", "href", "#"+id)
		link.AppendChild(htmldoc.Text("§"))
		li.AppendChild(link)
		li.AppendChild(htmldoc.Text(" "))
		for c := st.FirstChild; c != nil; c = c.NextSibling {
			li.AppendChild(htmldoc.Clone(c))
		}
		list.AppendChild(li)

		st.InsertBefore(htmldoc.Element("a", "name", id), st.FirstChild)
		htmldoc.SetAttr(st, "style", hide(htmldoc.Attr(st, "style")))
	}
	return len(statements), nil
}

// ScanString parses src, scans it and renders the result.
func ScanString(page, src string) (string, int, error) {
	doc, err := htmldoc.Parse(src)
	if err != nil {
		return "", 0, failure.Structure(page, "parse", err)
	}
	n, err := Scan(page, doc.Body())
	if err != nil {
		return "", 0, err
	}
	out, err := doc.Render()
	if err != nil {
		return "", 0, failure.Structure(page, "render", err)
	}
	return out, n, nil
}

func hide(style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return "display:none"
	}
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	return style + " display:none"
}
