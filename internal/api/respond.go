package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/specxref/internal/backlinks"
	"github.com/dgallion1/specxref/internal/failure"
	"github.com/dgallion1/specxref/internal/publish"
	"github.com/dgallion1/specxref/internal/toc"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// engineError maps engine failures to HTTP responses.
func engineError(w http.ResponseWriter, err error) {
	var se *failure.StructureError
	var de *toc.DuplicateError
	switch {
	case errors.As(err, &se):
		body := map[string]string{"error": err.Error(), "kind": "structure", "page": se.Page}
		if se.DumpPath != "" {
			body["dump"] = se.DumpPath
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case failure.IsConfiguration(err):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error(), "kind": "configuration"})
	case errors.As(err, &de):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "kind": "duplicate_section"})
	case errors.Is(err, backlinks.ErrLinksOpen), errors.Is(err, publish.ErrLinksSealed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error(), "kind": "ordering"})
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
