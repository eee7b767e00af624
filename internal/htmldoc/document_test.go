package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dgallion1/specxref/internal/failure"
)

func TestParse_FragmentRoundTrip(t *testing.T) {
	src := `<h1>Title</h1><p>Some <b>bold</b> text.</p>`
	doc, err := Parse(src)
	require.NoError(t, err)
	assert.True(t, doc.Fragment)
	assert.Same(t, doc.Root, doc.Body())

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestParse_FullDocument(t *testing.T) {
	src := `<!DOCTYPE html><html><head><title>T</title></head><body><h2>A</h2></body></html>`
	doc, err := Parse(src)
	require.NoError(t, err)
	assert.False(t, doc.Fragment)

	body := doc.Body()
	require.True(t, IsElement(body, "body"))
	assert.Equal(t, "h2", body.FirstChild.Data)

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, out, "<title>T</title>")
	assert.Contains(t, out, "<h2>A</h2>")
}

func TestCheck_AcceptsBalancedMarkup(t *testing.T) {
	cases := []string{
		`<div><p>one<p>two</div>`,
		`<ul><li>a<li>b</ul><img src="x.png"><br/>`,
		`<!DOCTYPE html><html><head><meta charset="utf-8"></head><body><h1>x</h1></body></html>`,
		`<p>text with <!-- a comment --> inside</p>`,
	}
	for _, src := range cases {
		assert.NoError(t, Check("page.html", src), src)
	}
}

func TestCheck_RejectsMalformedMarkup(t *testing.T) {
	cases := map[string]string{
		`<div><span>x</div>`: "<span> closed by </div>",
		`<p>x</p></div>`:     "stray </div>",
		`<div><table>`:       "unclosed <table>",
	}
	for src, reason := range cases {
		err := Check("page.html", src)
		require.Error(t, err, src)
		var se *failure.StructureError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, reason, se.Reason)
		assert.Equal(t, "page.html", se.Page)
	}
}

func TestNodeHelpers(t *testing.T) {
	a := Element("a", "href", "x.html", "class", "one two")
	assert.Equal(t, "x.html", Attr(a, "href"))
	assert.True(t, HasAttr(a, "class"))
	assert.False(t, HasAttr(a, "name"))
	assert.True(t, HasClass(a, "two"))
	assert.False(t, HasClass(a, "on"))

	SetAttr(a, "href", "y.html")
	SetAttr(a, "title", "t")
	assert.Equal(t, "y.html", Attr(a, "href"))
	assert.Equal(t, "t", Attr(a, "title"))

	a.AppendChild(Text("  link \n text "))
	assert.Equal(t, "link text", TextContent(a))

	c := Clone(a)
	SetAttr(c, "href", "z.html")
	assert.Equal(t, "y.html", Attr(a, "href"))
	require.NotNil(t, c.FirstChild)
	assert.Equal(t, html.TextNode, c.FirstChild.Type)
	assert.Nil(t, c.Parent)

	assert.True(t, IsBlank(Text(" \n\t")))
	assert.False(t, IsBlank(Text(" x ")))
	assert.Equal(t, 3, HeadingLevel("h3"))
	assert.Equal(t, 0, HeadingLevel("header"))
}

func TestFormatFor(t *testing.T) {
	f, err := FormatFor("pages/Patient.MD")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	f, err = FormatFor("patient.xhtml")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)

	_, err = FormatFor("patient.pdf")
	assert.Error(t, err)
	assert.False(t, IsSupportedExtension("notes.txt"))
}
