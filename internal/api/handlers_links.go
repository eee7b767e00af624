package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/specxref/internal/backlinks"
	"github.com/dgallion1/specxref/internal/publish"
)

type linkRequest struct {
	Entity  string `json:"entity"`
	Type    string `json:"type"`
	Target  string `json:"target"`
	Link    string `json:"link"`
	Display string `json:"display"`
	Hint    string `json:"hint"`
}

// handleLinks records a batch of backlinks: {"links": [...]}.
func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxPageBytes)
	var req struct {
		Links []linkRequest `json:"links"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	types := make([]backlinks.RefType, len(req.Links))
	for i, l := range req.Links {
		if l.Entity == "" || l.Target == "" {
			jsonError(w, fmt.Sprintf("link %d: entity and target are required", i), http.StatusBadRequest)
			return
		}
		typ, err := backlinks.ParseRefType(l.Type)
		if err != nil {
			jsonError(w, fmt.Sprintf("link %d: %v", i, err), http.StatusBadRequest)
			return
		}
		types[i] = typ
	}

	var err error
	recorded := 0
	s.withRun(func(run *publish.Run) {
		for i, l := range req.Links {
			display := l.Display
			if display == "" {
				display = l.Target
			}
			if err = run.Link(l.Entity, types[i], l.Target, l.Link, display, l.Hint); err != nil {
				return
			}
			recorded++
		}
	})
	if err != nil {
		engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recorded": recorded})
}

func (s *Server) handleSeal(w http.ResponseWriter, r *http.Request) {
	var summary publish.Summary
	s.withRun(func(run *publish.Run) {
		run.SealLinks()
		summary = run.Summary()
	})
	writeJSON(w, http.StatusOK, summary)
}

// handleReferences renders the backlink block of an entity. The block title defaults
// to "References" and can be set with ?title=.
func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	title := r.URL.Query().Get("title")
	if title == "" {
		title = "References"
	}

	var block string
	var err error
	s.withRun(func(run *publish.Run) { block, err = run.References(entity).Render(title, entity) })
	if err != nil {
		engineError(w, err)
		return
	}
	writeHTML(w, block)
}
