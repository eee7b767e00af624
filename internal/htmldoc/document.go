// Package htmldoc parses, checks and renders the HTML pages handled by the cross-linking
// engine, and carries the small node helpers the engine's walkers share.
package htmldoc

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed page. Fragments are parsed in a <body> context and rendered back
// without the synthetic wrapper.
type Document struct {
	Root     *html.Node
	Fragment bool
}

// Parse parses src. Sources carrying a doctype or an <html> element are parsed as complete
// documents; anything else is a body fragment.
func Parse(src string) (*Document, error) {
	if isFullDocument(src) {
		root, err := html.Parse(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return &Document{Root: root}, nil
	}

	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{Root: root, Fragment: true}, nil
}

// Body returns the <body> element, or the root when the document has none.
func (d *Document) Body() *html.Node {
	if b := FindBody(d.Root); b != nil {
		return b
	}
	return d.Root
}

// Render serializes the document.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if !d.Fragment {
		if err := html.Render(&buf, d.Root); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
		return buf.String(), nil
	}
	for c := d.Root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render html fragment: %w", err)
		}
	}
	return buf.String(), nil
}

func isFullDocument(src string) bool {
	head := strings.ToLower(strings.TrimSpace(src))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype") || strings.Contains(head, "<html")
}
