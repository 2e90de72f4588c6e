package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"costwise/app"
	"costwise/domain/core"
	"costwise/domain/dataset"
	"costwise/domain/run"
	"costwise/ports"
)

// datasetRequest names the tabular file every pipeline request starts from.
type datasetRequest struct {
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
}

type searchRequest struct {
	Dataset datasetRequest   `json:"dataset"`
	Trainer string           `json:"trainer,omitempty"`
	Search  app.SearchConfig `json:"search"`
}

type evaluateRequest struct {
	Dataset datasetRequest  `json:"dataset"`
	Trainer string          `json:"trainer,omitempty"`
	Sweep   app.SweepConfig `json:"sweep"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	split, err := s.loadAndPartition(r, req.Dataset)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	trainer, err := s.trainerFor(req.Trainer)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if req.Search.MaxIterations <= 0 {
		req.Search.MaxIterations = s.cfg.MaxIterations
	}

	result, err := s.search.Search(r.Context(), split, trainer, req.Search)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	rec := run.New(req.Dataset.Path, req.Search.TargetRate, req.Search.Tolerance)
	rec.Economics = req.Search.Economics
	rec.CostModel = result.CostModel
	rec.Iterations = result.Iterations
	rec.Confusion = result.Confusion
	rec.Report = result.Report
	if err := s.deps.Runs.Create(r.Context(), rec); err != nil {
		s.deps.Logger.Error("persist run: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to persist run")
		return
	}

	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	split, err := s.loadAndPartition(r, req.Dataset)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	trainer, err := s.trainerFor(req.Trainer)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	result, err := s.sweep.Sweep(r.Context(), split, trainer, req.Sweep)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	// The sweep is the evaluate surface's grid form; both accept the same
	// request shape.
	s.handleEvaluate(w, r)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.deps.Runs.ListRecent(r.Context(), limit)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.runFromPath(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.runFromPath(r)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(s.renderer.HTML(rec))
}

func (s *Server) runFromPath(r *http.Request) (*run.Run, error) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return s.deps.Runs.GetByID(r.Context(), id)
}

// loadAndPartition reads the requested file and splits it with the
// server-wide seed so repeated requests over one file evaluate the same
// held-out rows.
func (s *Server) loadAndPartition(r *http.Request, req datasetRequest) (split dataset.Split, err error) {
	ds, err := s.deps.Loader.Load(r.Context(), req.Path, req.Outcome)
	if err != nil {
		return split, err
	}
	rng, err := s.deps.RNG.SeededStream(r.Context(), "partition/"+req.Path, s.cfg.Seed)
	if err != nil {
		return split, err
	}
	return ds.Partition(s.cfg.TrainFraction, rng)
}

func (s *Server) trainerFor(name string) (ports.Trainer, error) {
	if name == "" {
		name = "tree"
	}
	t, ok := s.deps.Trainers[name]
	if !ok {
		return nil, core.NewInvalidParameterError("trainer", "unknown trainer "+strconv.Quote(name))
	}
	return t, nil
}

func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsInvalidParameterError(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case core.IsNotFoundError(err):
		s.respondError(w, http.StatusNotFound, err.Error())
	case core.IsConvergenceError(err):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.deps.Logger.Error("request failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.deps.Logger.Error("encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, errorResponse{Error: msg})
}
