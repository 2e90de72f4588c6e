package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"costwise/adapters/report"
	"costwise/app"
	"costwise/internal"
	"costwise/ports"
)

// Config holds API server configuration.
type Config struct {
	Port string
	// TrainFraction and Seed drive the dataset partition behind every
	// request, so two requests over the same file see the same split.
	TrainFraction float64
	Seed          int64
	MaxIterations int
}

// Deps are the collaborators the server orchestrates.
type Deps struct {
	Loader   ports.DatasetLoader
	Runs     ports.RunRepository
	RNG      ports.RNG
	Trainers map[string]ports.Trainer
	Logger   *internal.Logger
}

// Server exposes the targeting pipeline over a JSON API.
type Server struct {
	router   *chi.Mux
	cfg      Config
	deps     Deps
	search   *app.SearchService
	sweep    *app.SweepService
	eval     *app.EvaluationService
	renderer *report.Renderer
}

// NewServer creates the API server and mounts its routes.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Loader == nil || deps.Runs == nil || deps.RNG == nil {
		return nil, fmt.Errorf("loader, run repository, and rng are required")
	}
	if len(deps.Trainers) == 0 {
		return nil, fmt.Errorf("at least one trainer is required")
	}
	if deps.Logger == nil {
		deps.Logger = internal.DefaultLogger
	}
	if cfg.TrainFraction <= 0 || cfg.TrainFraction >= 1 {
		cfg.TrainFraction = 0.7
	}

	eval := app.NewEvaluationService(deps.Logger)
	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		deps:     deps,
		eval:     eval,
		search:   app.NewSearchService(eval, deps.Logger),
		sweep:    app.NewSweepService(eval, deps.Logger),
		renderer: report.NewRenderer(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Minute))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/sweep", s.handleSweep)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/report", s.handleRunReport)
	})

	return s, nil
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	addr := ":" + s.cfg.Port
	s.deps.Logger.Info("API listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
