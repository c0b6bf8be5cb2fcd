package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/rechord/internal/config"
	"github.com/dgallion1/rechord/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for rechord.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	base         *config.File
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. base holds the default
// typesetting options that each request may override; it is never modified.
func NewServer(orch *pipeline.Orchestrator, base *config.File, log *slog.Logger, cfg config.Config) *Server {
	if base == nil {
		base = config.NewFile()
	}
	s := &Server{
		orchestrator: orch,
		base:         base,
		log:          log,
		cfg:          cfg,
	}
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/render", s.handleRender)
		r.Get("/api/render/{jobID}/status", s.handleRenderStatus)
		r.Get("/api/render/{jobID}/output", s.handleRenderOutput)
		r.Post("/api/convert/chordpro", s.handleConvertChordPro)
		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
