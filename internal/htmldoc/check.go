package htmldoc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/specxref/internal/failure"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// Elements whose end tag may be omitted and are closed implicitly by their parent.
var optionalEnd = map[string]bool{
	"p": true, "li": true, "dt": true, "dd": true, "tr": true, "td": true, "th": true,
	"thead": true, "tbody": true, "tfoot": true, "option": true, "colgroup": true,
	"html": true, "head": true, "body": true,
}

// Check is the strict well-formedness pass run before a page is parsed. The html5 parser
// repairs anything; generated pages are expected to be balanced, so stray end tags and
// unclosed elements are reported as a StructureError instead of being silently fixed.
func Check(page, src string) error {
	z := html.NewTokenizer(strings.NewReader(src))
	var stack []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return failure.Structure(page, "tokenize", err)
			}
			for i := len(stack) - 1; i >= 0; i-- {
				if !optionalEnd[stack[i]] {
					return failure.Structure(page, fmt.Sprintf("unclosed <%s>", stack[i]), nil)
				}
			}
			return nil
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if !voidElements[tag] {
				stack = append(stack, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			i := len(stack) - 1
			for i >= 0 && stack[i] != tag {
				i--
			}
			if i < 0 {
				return failure.Structure(page, fmt.Sprintf("stray </%s>", tag), nil)
			}
			for _, open := range stack[i+1:] {
				if !optionalEnd[open] {
					return failure.Structure(page, fmt.Sprintf("<%s> closed by </%s>", open, tag), nil)
				}
			}
			stack = stack[:i]
		}
	}
}
