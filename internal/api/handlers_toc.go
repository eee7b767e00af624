package api

import (
	"net/http"

	"github.com/dgallion1/specxref/internal/publish"
	"github.com/dgallion1/specxref/internal/toc"
)

// handleTOC renders the master TOC, or the TOC of one IG with ?ig=.
func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	var entries []toc.Entry
	s.withRun(func(run *publish.Run) { entries = run.IGTOC(r.URL.Query().Get("ig")) })
	writeHTML(w, toc.Render(entries))
}

func (s *Server) handleTOCEntries(w http.ResponseWriter, r *http.Request) {
	var entries []toc.Entry
	s.withRun(func(run *publish.Run) { entries = run.IGTOC(r.URL.Query().Get("ig")) })
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
