package htmldoc

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Raw HTML is passed through: authored pages embed conformance spans and manual anchors.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(ghtml.WithXHTML(), ghtml.WithUnsafe()),
)

// FromMarkdown renders a Markdown page source to an HTML fragment.
func FromMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// MarkdownHeadings lists the heading levels of a Markdown source in document order.
// Runs log it to show how many sections a Markdown page contributes.
func MarkdownHeadings(src []byte) []int {
	doc := markdown.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	var levels []int
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			levels = append(levels, h.Level)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return levels
}
