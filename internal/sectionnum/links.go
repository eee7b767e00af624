package sectionnum

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/specxref/internal/htmldoc"
)

// IsExternal reports whether the anchor a points outside the corpus: an http(s) target
// that is not opted out with data-no-external, is not an xlink and is not below
// extensionsRoot.
func IsExternal(a *html.Node, extensionsRoot string) bool {
	href := htmldoc.Attr(a, "href")
	if !strings.HasPrefix(href, "http:") && !strings.HasPrefix(href, "https:") {
		return false
	}
	if htmldoc.HasAttr(a, "data-no-external") || hasXlinkType(a) {
		return false
	}
	if extensionsRoot != "" && strings.HasPrefix(href, extensionsRoot) {
		return false
	}
	return true
}

// The html parser keeps "xlink:type" verbatim in HTML content and splits it into a
// namespace inside svg/math.
func hasXlinkType(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "xlink:type" || (a.Namespace == "xlink" && a.Key == "type") {
			return true
		}
	}
	return false
}

func hasExternalIcon(a *html.Node) bool {
	for c := a.LastChild; c != nil; c = c.PrevSibling {
		if htmldoc.IsBlank(c) {
			continue
		}
		return htmldoc.IsElement(c, "img") && htmldoc.HasClass(c, externalIconClass)
	}
	return false
}
