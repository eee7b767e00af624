package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dgallion1/specxref/internal/navigation"
	"github.com/dgallion1/specxref/internal/publish"
)

type newRunRequest struct {
	Navigation *struct {
		Core map[string]string            `json:"core"`
		IGs  map[string]map[string]string `json:"igs"`
	} `json:"navigation"`
}

// handleNewRun discards the current run and starts a fresh one. Breadcrumbs in the
// optional body are layered over the server's navigation index.
func (s *Server) handleNewRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxPageBytes)
	var req newRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	nav := navigation.New()
	nav.Merge(s.nav)
	if req.Navigation != nil {
		extra, err := navigation.FromTables(req.Navigation.Core, req.Navigation.IGs)
		if err != nil {
			engineError(w, err)
			return
		}
		nav.Merge(extra)
	}

	s.mu.Lock()
	s.run = s.newRun(nav)
	summary := s.run.Summary()
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleCurrentRun(w http.ResponseWriter, r *http.Request) {
	var summary publish.Summary
	s.withRun(func(run *publish.Run) { summary = run.Summary() })
	writeJSON(w, http.StatusOK, summary)
}
