package htmldoc

import (
	"strings"
	"testing"
)

func TestFromMarkdown_HeadingsAndRawHTML(t *testing.T) {
	input := `# Title

Intro text with <span class="fhir-conformance">SHALL be supported</span>.

## Section A

| a | b |
|---|---|
| 1 | 2 |
`
	out, err := FromMarkdown([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<h1>Title</h1>") {
		t.Errorf("expected h1 in output, got %q", out)
	}
	if !strings.Contains(out, "<h2>Section A</h2>") {
		t.Errorf("expected h2 in output, got %q", out)
	}
	if !strings.Contains(out, `<span class="fhir-conformance">SHALL be supported</span>`) {
		t.Errorf("expected raw span to pass through, got %q", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("expected GFM table, got %q", out)
	}
	if err := Check("doc.md", out); err != nil {
		t.Errorf("expected rendered markdown to pass the strict check: %v", err)
	}
}

func TestMarkdownHeadings_Levels(t *testing.T) {
	input := `# Title

## Section A

### Subsection A1

Plain text.

## Section B
`
	got := MarkdownHeadings([]byte(input))
	want := []int{1, 2, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %d headings, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("heading %d: expected level %d, got %d", i, want[i], got[i])
		}
	}
}

func TestToHTML_PassesHTMLThrough(t *testing.T) {
	out, err := ToHTML(FormatHTML, []byte("<p>x</p>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<p>x</p>" {
		t.Errorf("expected unchanged html, got %q", out)
	}
	if _, err := ToHTML("pdf", nil); err == nil {
		t.Error("expected error for unsupported format")
	}
}
