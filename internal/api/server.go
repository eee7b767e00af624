package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/specxref/internal/config"
	"github.com/dgallion1/specxref/internal/metrics"
	"github.com/dgallion1/specxref/internal/navigation"
	"github.com/dgallion1/specxref/internal/publish"
)

// Server is the HTTP API of the cross-linking engine. It holds one publication run at
// a time; POST /api/runs replaces it.
type Server struct {
	router  chi.Router
	nav     *navigation.Index
	rec     metrics.Recorder
	metrics http.Handler
	log     *slog.Logger
	cfg     config.Config

	// mu serializes every use of run; the engine is single-threaded.
	mu  sync.Mutex
	run *publish.Run
}

// NewServer creates the server and starts an initial run over nav. metricsHandler may
// be nil, which disables /metrics.
func NewServer(nav *navigation.Index, rec metrics.Recorder, metricsHandler http.Handler, log *slog.Logger, cfg config.Config) *Server {
	if nav == nil {
		nav = navigation.New()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	s := &Server{
		nav:     nav,
		rec:     rec,
		metrics: metricsHandler,
		log:     log,
		cfg:     cfg,
	}
	s.run = s.newRun(nav)
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/runs", s.handleNewRun)
		r.Get("/api/runs/current", s.handleCurrentRun)

		r.Post("/api/pages", s.handleProcessPage)

		r.Post("/api/links", s.handleLinks)
		r.Post("/api/links/seal", s.handleSeal)
		r.Get("/api/references/{entity}", s.handleReferences)

		r.Get("/api/toc", s.handleTOC)
		r.Get("/api/toc/entries", s.handleTOCEntries)

		r.Get("/api/stats/pages", s.handlePageStats)
	})

	s.router = r
}

func (s *Server) newRun(nav *navigation.Index) *publish.Run {
	run := publish.NewRun(s.cfg.Run(), nav, s.log, s.rec)
	s.log.Info("run started", "run_id", run.ID)
	return run
}

// withRun calls fn with the current run while holding the run lock.
func (s *Server) withRun(fn func(run *publish.Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
