package confsummary

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/specxref/internal/failure"
)

const page = `<h2>Conformance</h2>
<ul id="conf-summary"></ul>
<p>The server <span class="fhir-conformance">SHALL support read</span>.</p>
<div><p>Clients <span class="fhir-conformance">SHOULD use <b>_format</b></span>.</p></div>
<p>Servers <span class="fhir-conformance" style="color:red">MAY page</span>.</p>`

func TestScanLinksStatements(t *testing.T) {
	out, n, err := ScanString("conformance.html", page)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Contains(t, out, `<li><a href="#fcs0">§</a> SHALL support read</li>`)
	assert.Contains(t, out, `<li><a href="#fcs1">§</a> SHOULD use <b>_format</b></li>`)
	assert.Contains(t, out, `<li><a href="#fcs2">§</a> MAY page</li>`)

	assert.Contains(t, out, `<span class="fhir-conformance" style="display:none"><a name="fcs0"></a>SHALL support read</span>`)
	assert.Contains(t, out, `<span class="fhir-conformance" style="display:none"><a name="fcs1"></a>SHOULD use <b>_format</b></span>`)
	assert.Contains(t, out, `<span class="fhir-conformance" style="color:red; display:none"><a name="fcs2"></a>MAY page</span>`)

	// summary items follow document order
	assert.Less(t, strings.Index(out, "#fcs0"), strings.Index(out, "#fcs1"))
	assert.Less(t, strings.Index(out, "#fcs1"), strings.Index(out, "#fcs2"))
}

func TestScanWithoutStatements(t *testing.T) {
	out, n, err := ScanString("p.html", `<ul id="conf-summary"></ul><p>nothing here</p>`)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, out, `<ul id="conf-summary"></ul>`)
}

func TestScanRequiresSummary(t *testing.T) {
	_, _, err := ScanString("p.html", `<p><span class="fhir-conformance">SHALL</span></p>`)
	require.Error(t, err)
	assert.True(t, failure.IsStructure(err))
	assert.True(t, errors.Is(err, ErrNoSummary))
}

func TestScanRejectsSecondSummary(t *testing.T) {
	_, _, err := ScanString("p.html", `<ul id="conf-summary"></ul><ul id="conf-summary"></ul>`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMultipleSummaries))

	var se *failure.StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "p.html", se.Page)
}
