package api

import (
	"net/http"

	"github.com/dgallion1/specxref/internal/publish"
)

func (s *Server) handlePageStats(w http.ResponseWriter, r *http.Request) {
	var (
		stats   publish.StatsSnapshot
		summary publish.Summary
	)
	s.withRun(func(run *publish.Run) {
		stats = run.Stats()
		summary = run.Summary()
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": summary.ID,
		"stats":  stats,
	})
}
