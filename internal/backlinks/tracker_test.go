package backlinks

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkIsIdempotentUpsert(t *testing.T) {
	tr := NewTracker()
	tr.Link(ResourceReference, "Patient", "patient.html", "Patient", "subject")
	tr.Link(ResourceReference, "Patient", "other.html", "Renamed", "performer")

	assert.Equal(t, 1, tr.Count())
	assert.True(t, tr.HasLink(ResourceReference, "Patient"))
	assert.False(t, tr.HasLink(ProfileReference, "Patient"))
	assert.Equal(t, []string{"subject", "performer"}, tr.Hints(ResourceReference, "Patient"))

	out, err := tr.Render("References", "Observation")
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="patient.html" title="subject, performer">Patient</a>`)
	assert.NotContains(t, out, "Renamed")
}

func TestLinkWithoutHint(t *testing.T) {
	tr := NewTracker()
	tr.Link(Inherits, "DomainResource", "domainresource.html", "DomainResource", "")
	tr.Link(Inherits, "DomainResource", "domainresource.html", "DomainResource", "")

	assert.Equal(t, 1, tr.Count())
	assert.Empty(t, tr.Hints(Inherits, "DomainResource"))

	out, err := tr.Render("References", "Patient")
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="domainresource.html">DomainResource</a>`)
}

func TestRenderEmptyHasNoLinks(t *testing.T) {
	out, err := NewTracker().Render("References", "Patient")
	require.NoError(t, err)
	assert.NotContains(t, out, "<a")
	assert.Contains(t, out, "No references to Patient.")
}

func TestRenderTypeOrderAndSorting(t *testing.T) {
	tr := NewTracker()
	tr.Link(ProfileReference, "us-core", "us-core.html", "US Core", "")
	tr.Link(ResourceReference, "Encounter", "encounter.html", "Encounter", "")
	tr.Link(ResourceReference, "Account", "account.html", "Account", "")
	tr.Link(Inherits, "Resource", "resource.html", "Resource", "")

	out, err := tr.Render("References", "Patient")
	require.NoError(t, err)

	inherits := strings.Index(out, "Inherited by")
	resources := strings.Index(out, "Referenced by resources")
	profiles := strings.Index(out, "Referenced by profiles")
	require.True(t, inherits >= 0 && resources >= 0 && profiles >= 0, out)
	assert.Less(t, inherits, resources)
	assert.Less(t, resources, profiles)
	assert.Less(t, strings.Index(out, "Account"), strings.Index(out, "Encounter"))
	assert.NotContains(t, out, "Implemented by")
}

func TestRenderSelfReferenceAndDisclosure(t *testing.T) {
	tr := NewTracker()
	names := []string{"Account", "Basic", "Condition", "Device", "Encounter", "Flag", "Group"}
	for _, n := range names {
		tr.Link(ResourceReference, n, strings.ToLower(n)+".html", n, "")
	}

	out, err := tr.Render("References", "Condition")
	require.NoError(t, err)

	assert.Equal(t, 6, strings.Count(out, "<a href="))
	assert.Contains(t, out, `<span class="self-reference">itself</span>`)
	assert.NotContains(t, out, `href="condition.html"`)
	for _, n := range names {
		if n != "Condition" {
			assert.Contains(t, out, ">"+n+"</a>")
		}
	}

	// six visible, the seventh collapsed
	visible, hidden, found := strings.Cut(out, `<details class="more-references">`)
	require.True(t, found, out)
	assert.Equal(t, 5, strings.Count(visible, "<a href="))
	assert.Contains(t, visible, "itself")
	assert.Contains(t, hidden, "and 1 more")
	assert.Contains(t, hidden, ">Group</a>")
}

func TestRenderWithinDisclosureHasNoDetails(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < DefaultDisclosure; i++ {
		tr.Link(ExtensionReference, fmt.Sprintf("ext-%d", i), fmt.Sprintf("ext-%d.html", i), fmt.Sprintf("ext-%d", i), "")
	}
	out, err := tr.Render("References", "Patient")
	require.NoError(t, err)
	assert.NotContains(t, out, "<details")
}

func TestWithDisclosure(t *testing.T) {
	tr := NewTracker(WithDisclosure(2))
	for _, n := range []string{"A", "B", "C"} {
		tr.Link(ProfileReference, n, n+".html", n, "")
	}
	out, err := tr.Render("References", "X")
	require.NoError(t, err)
	assert.Contains(t, out, "and 1 more")
}

func TestRenderEscapes(t *testing.T) {
	tr := NewTracker()
	tr.Link(ResourceReference, "x", "a.html?b=1&c=2", "<X>", `say "hi"`)
	out, err := tr.Render("Refs & more", "Y")
	require.NoError(t, err)
	assert.Contains(t, out, "Refs &amp; more")
	assert.Contains(t, out, `href="a.html?b=1&amp;c=2"`)
	assert.Contains(t, out, `title="say &#34;hi&#34;"`)
	assert.Contains(t, out, "&lt;X&gt;")
}

func TestBarrier(t *testing.T) {
	b := NewBarrier()
	tr := NewTracker(WithBarrier(b))
	tr.Link(Inherits, "Resource", "resource.html", "Resource", "")

	_, err := tr.Render("References", "Patient")
	require.ErrorIs(t, err, ErrLinksOpen)

	b.Seal()
	assert.True(t, b.Sealed())
	out, err := tr.Render("References", "Patient")
	require.NoError(t, err)
	assert.Contains(t, out, "Resource")
}

func TestParseRefType(t *testing.T) {
	for _, typ := range RefTypes {
		got, err := ParseRefType(strings.ToLower(typ.String()))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseRefType("Mentions")
	assert.Error(t, err)

	var typ RefType
	require.NoError(t, typ.UnmarshalText([]byte("PatternImplementedBy")))
	assert.Equal(t, PatternImplementedBy, typ)
}
