package toc

import (
	"strings"

	"golang.org/x/net/html"
)

// Render produces the master Table of Contents as nested lists.
func Render(entries []Entry) string {
	var b strings.Builder
	nodes := Outline(entries)
	if len(nodes) == 0 {
		b.WriteString(`<p class="toc-empty">No sections have been numbered.</p>`)
		return b.String()
	}
	b.WriteString(`<ul class="toc">`)
	for _, n := range nodes {
		renderNode(&b, n)
	}
	b.WriteString(`</ul>`)
	return b.String()
}

func renderNode(b *strings.Builder, n *Node) {
	e := n.Entry
	b.WriteString(`<li><a href="`)
	b.WriteString(html.EscapeString(e.Href()))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(string(e.Section)))
	b.WriteString(`</a> `)
	b.WriteString(html.EscapeString(e.Title))
	if label := e.Status.Label(); label != "" {
		b.WriteString(` <span class="status-badge `)
		b.WriteString(string(e.Status))
		b.WriteString(`">`)
		b.WriteString(label)
		b.WriteString(`</span>`)
	}
	if len(n.Children) > 0 {
		b.WriteString(`<ul>`)
		for _, c := range n.Children {
			renderNode(b, c)
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</li>`)
}

// RenderText produces an indented plain-text TOC.
func RenderText(entries []Entry) string {
	var b strings.Builder
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString(string(n.Entry.Section))
			b.WriteString(" ")
			b.WriteString(n.Entry.Title)
			if label := n.Entry.Status.Label(); label != "" {
				b.WriteString(" [" + label + "]")
			}
			b.WriteString("\n")
			walk(n.Children, depth+1)
		}
	}
	walk(Outline(entries), 0)
	return b.String()
}
