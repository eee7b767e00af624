package sectionnum

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/specxref/internal/htmldoc"
	"github.com/dgallion1/specxref/internal/toc"
)

// PrecedingAnchor looks for a manually authored <a name="..."> directly before
// siblings[idx]. Whitespace-only text and comments are skipped; any other text or
// element ends the search.
func PrecedingAnchor(siblings []*html.Node, idx int) (string, bool) {
	if idx > len(siblings) {
		idx = len(siblings)
	}
	for i := idx - 1; i >= 0; i-- {
		s := siblings[i]
		switch {
		case s.Type == html.CommentNode, htmldoc.IsBlank(s):
			continue
		case htmldoc.IsElement(s, "a") && htmldoc.Attr(s, "name") != "":
			return htmldoc.Attr(s, "name"), true
		default:
			return "", false
		}
	}
	return "", false
}

// statusScanLimit bounds how many elements from the top of the page are inspected.
const statusScanLimit = 20

// DetectStatus reads the standards status from the first class token near the top of
// the page that names one.
func DetectStatus(root *html.Node) toc.Status {
	seen := 0
	var found toc.Status
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			seen++
			if seen > statusScanLimit {
				return true
			}
			for _, tok := range classTokens(n) {
				if s, ok := toc.ParseStatus(tok); ok {
					found = s
					return true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

func classTokens(n *html.Node) []string {
	var out []string
	for _, a := range n.Attr {
		if a.Key == "class" {
			out = append(out, strings.Fields(a.Val)...)
		}
	}
	return out
}
