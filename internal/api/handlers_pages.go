package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dgallion1/specxref/internal/htmldoc"
	"github.com/dgallion1/specxref/internal/navigation"
	"github.com/dgallion1/specxref/internal/publish"
	"github.com/dgallion1/specxref/internal/toc"
)

// handleProcessPage numbers one uploaded page. The multipart form carries the page
// source as "file" plus the optional fields name, ig, anchor, link, level, status and
// conformance.
func (s *Server) handleProcessPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxPageBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	format, err := htmldoc.FormatFor(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxPageBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxPageBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxPageBytes), http.StatusRequestEntityTooLarge)
		return
	}

	page := publish.Page{
		Source:      filename,
		Format:      format,
		Content:     data,
		LogicalName: r.FormValue("name"),
		IG:          r.FormValue("ig"),
		Anchor:      r.FormValue("anchor"),
		Link:        r.FormValue("link"),
		Conformance: r.FormValue("conformance") == "true",
	}
	if page.LogicalName == "" {
		page.LogicalName = navigation.Key(filename)
	}
	if page.Link == "" {
		page.Link = page.LogicalName + ".html"
	}
	if v := r.FormValue("level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "level must be a non-negative integer", http.StatusBadRequest)
			return
		}
		page.Level = n
	}
	if v := r.FormValue("status"); v != "" {
		st, ok := toc.ParseStatus(v)
		if !ok {
			jsonError(w, fmt.Sprintf("unknown status %q", v), http.StatusBadRequest)
			return
		}
		page.Status = st
	}

	var out publish.Output
	s.withRun(func(run *publish.Run) { out, err = run.ProcessPage(page) })
	if err != nil {
		engineError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		writeHTML(w, out.HTML)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
