package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/specxref/internal/config"
	"github.com/dgallion1/specxref/internal/metrics"
	"github.com/dgallion1/specxref/internal/navigation"
	"github.com/dgallion1/specxref/internal/toc"
)

func testConfig() config.Config {
	return config.Config{
		TocDuplicates:       "reject",
		ReferenceDisclosure: 6,
		StatsWindow:         time.Hour,
		MaxPageBytes:        1 << 20,
	}
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	nav := navigation.New()
	nav.Set("", "patient", "3")
	nav.Set("uscore", "patient", "2")
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	return NewServer(nav, rec, metrics.HTTPHandler(reg), slog.New(slog.NewTextHandler(io.Discard, nil)), cfg)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func pageRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/pages", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())
	rr := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestPublicationFlow(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s, jsonRequest(http.MethodPost, "/api/links",
		`{"links":[{"entity":"Patient","type":"ResourceReference","target":"Observation","link":"observation.html","hint":"subject"}]}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"recorded":1}`, rr.Body.String())

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/references/Patient", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, s, jsonRequest(http.MethodPost, "/api/links/seal", ""))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/references/Patient?title=Used+by", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<a href="observation.html" title="subject">Observation</a>`)
	assert.Contains(t, rr.Body.String(), "Used by")

	rr = do(t, s, pageRequest(t, "patient.html",
		`<h1>Scope</h1><h2>Boundaries</h2><div data-references="Patient"></div>`, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out struct {
		Link            string `json:"link"`
		HTML            string `json:"html"`
		Headings        int    `json:"headings"`
		ReferenceBlocks int    `json:"reference_blocks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "patient.html", out.Link)
	assert.Equal(t, 2, out.Headings)
	assert.Equal(t, 1, out.ReferenceBlocks)
	assert.Contains(t, out.HTML, `<span class="sectioncount">3.1.1 <a name="3.1.1"></a></span>`)

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/toc/entries", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var entries struct {
		Entries []toc.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries.Entries, 2)
	assert.Equal(t, "3.1", string(entries.Entries[0].Section))
	assert.Equal(t, "Boundaries", entries.Entries[1].Title)

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/toc", nil))
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `<a href="patient.html#3.1">3.1</a> Scope`)

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats/pages", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"count":1`)

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "specxref_headings_numbered_total")
}

func TestLinksAfterSealConflict(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(t, s, jsonRequest(http.MethodPost, "/api/links/seal", ""))

	rr := do(t, s, jsonRequest(http.MethodPost, "/api/links",
		`{"links":[{"entity":"Patient","type":"Inherits","target":"X"}]}`))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLinksValidation(t *testing.T) {
	s := newTestServer(t, testConfig())
	rr := do(t, s, jsonRequest(http.MethodPost, "/api/links", `{"links":[{"entity":"Patient","type":"Mentions","target":"X"}]}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, s, jsonRequest(http.MethodPost, "/api/links", `{"links":[{"type":"Inherits","target":"X"}]}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(t, s, jsonRequest(http.MethodPost, "/api/links", `not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProcessPageErrors(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s, pageRequest(t, "encounter.html", `<h1>Scope</h1>`, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `"kind":"configuration"`)

	rr = do(t, s, pageRequest(t, "patient.html", `<h1 class="lead">Scope</h1>`, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `"kind":"structure"`)

	rr = do(t, s, pageRequest(t, "patient.pdf", `%PDF`, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, s, pageRequest(t, "patient.html", `<h1>Scope</h1>`, map[string]string{"level": "-1"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProcessPageFields(t *testing.T) {
	s := newTestServer(t, testConfig())

	rr := do(t, s, pageRequest(t, "profile.md", "# Profile\n\nSee [x](https://example.org).\n", map[string]string{
		"name":   "patient",
		"ig":     "uscore",
		"link":   "uscore/patient.html",
		"level":  "1",
		"status": "draft",
	}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `../external.png`)

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/toc/entries?ig=uscore", nil))
	assert.Contains(t, rr.Body.String(), `"section":"2.1"`)
	assert.Contains(t, rr.Body.String(), `"status":"draft"`)

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/toc/entries", nil))
	assert.JSONEq(t, `{"entries":[]}`, rr.Body.String())
}

func TestNewRunResetsState(t *testing.T) {
	s := newTestServer(t, testConfig())
	rr := do(t, s, pageRequest(t, "patient.html", `<h1>Scope</h1>`, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, s, jsonRequest(http.MethodPost, "/api/runs", `{"navigation":{"core":{"encounter":"5"}}}`))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"pages":0`)

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/toc/entries", nil))
	assert.JSONEq(t, `{"entries":[]}`, rr.Body.String())

	rr = do(t, s, pageRequest(t, "encounter.html", `<h1>Scope</h1>`, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, s, httptest.NewRequest(http.MethodGet, "/api/runs/current", nil))
	assert.Contains(t, rr.Body.String(), `"pages":1`)

	rr = do(t, s, jsonRequest(http.MethodPost, "/api/runs", `{"navigation":{"core":{"x":"1.a"}}}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "secret"
	s := newTestServer(t, cfg)

	rr := do(t, s, httptest.NewRequest(http.MethodGet, "/api/toc", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/toc", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, do(t, s, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/toc", nil)
	req.Header.Set("Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, do(t, s, req).Code)

	assert.Equal(t, http.StatusOK, do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestAuthRejectionIsJSON(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "secret"
	s := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/toc", nil)
	req.Header.Set("Authorization", "Basic c2VjcmV0")
	rr := do(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "missing authorization", body["error"])
}

func TestRequestLogCarriesRequestID(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	s := NewServer(navigation.New(), nil, nil, log, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	require.Equal(t, http.StatusOK, do(t, s, req).Code)

	var line map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(raw, &entry))
		if entry["msg"] == "request" {
			line = entry
		}
	}
	require.NotNil(t, line)
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "/health", line["path"])
	assert.EqualValues(t, len(`{"status":"ok"}`), line["bytes"])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "patient.html", sanitizeFilename("../../patient.html"))
	assert.Equal(t, "unnamed", sanitizeFilename(""))
}
