package htmldoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
)

// block is one paragraph of a Word document; level is 1..6 for headings, 0 otherwise.
type block struct {
	level int
	text  string
}

// FromDOCX renders a Word page source to an HTML fragment. Paragraphs styled
// "Heading 1".."Heading 6" become h1..h6; every other non-empty paragraph becomes <p>.
func FromDOCX(src []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var blocks []block
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		style := ""
		if para.Properties != nil && para.Properties.Style != nil {
			style = para.Properties.Style.Val
		}
		blocks = append(blocks, block{level: styleHeadingLevel(style), text: text})
	}
	return renderBlocks(blocks), nil
}

func renderBlocks(blocks []block) string {
	var b strings.Builder
	for _, bl := range blocks {
		tag := "p"
		if bl.level > 0 {
			tag = fmt.Sprintf("h%d", bl.level)
		}
		b.WriteString("<" + tag + ">")
		b.WriteString(html.EscapeString(bl.text))
		b.WriteString("</" + tag + ">\n")
	}
	return b.String()
}

// styleHeadingLevel maps Word paragraph style ids ("Heading2") and names ("heading 2")
// to a heading level.
func styleHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") || len(s) != len("heading")+1 {
		return 0
	}
	if d := s[len(s)-1]; d >= '1' && d <= '6' {
		return int(d - '0')
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
