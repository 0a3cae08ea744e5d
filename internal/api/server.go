package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"adsight/app"
	"adsight/domain/core"
	"adsight/domain/evidence"
	"adsight/domain/hypothesis"
	"adsight/ports"
)

// Server exposes validation runs over HTTP. All statistical semantics
// live in the engine; handlers only translate between JSON and domain
// types.
type Server struct {
	router   *chi.Mux
	service  *app.RunService
	repo     ports.ResultRepositoryPort
	reporter ports.ReporterPort
}

// NewServer wires the HTTP surface around the run service
func NewServer(service *app.RunService, repo ports.ResultRepositoryPort, reporter ports.ReporterPort) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		service:  service,
		repo:     repo,
		reporter: reporter,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Get("/{runID}", s.handleGetRun)
		r.Get("/{runID}/report", s.handleGetReport)
	})

	return s
}

// Handler returns the router for mounting or serving
func (s *Server) Handler() http.Handler {
	return s.router
}

// runRequest is the JSON shape accepted by POST /api/runs
type runRequest struct {
	Hypotheses []hypothesis.Hypothesis `json:"hypotheses"`
	Evidence   evidenceRequest         `json:"evidence"`
}

type evidenceRequest struct {
	Samples map[string]samplePairRequest `json:"samples"`
	Series  map[string][]evidence.Point  `json:"series"`
	Refs    []string                     `json:"refs"`
}

type samplePairRequest struct {
	Baseline []float64 `json:"baseline"`
	Test     []float64 `json:"test"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Hypotheses) == 0 {
		writeError(w, http.StatusBadRequest, "at least one hypothesis is required")
		return
	}

	ev, err := req.Evidence.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary := s.service.Execute(r.Context(), req.Hypotheses, ev)
	if err := s.repo.SaveRun(r.Context(), summary); err != nil {
		log.Printf("[API] failed to persist run %s: %v", summary.RunID, err)
		writeError(w, http.StatusInternalServerError, "failed to persist run")
		return
	}

	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := core.RunID(chi.URLParam(r, "runID"))
	summary, err := s.repo.GetRun(r.Context(), runID)
	if err != nil {
		if core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	summaries, err := s.repo.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	runID := core.RunID(chi.URLParam(r, "runID"))
	summary, err := s.repo.GetRun(r.Context(), runID)
	if err != nil {
		if core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "html" {
		rendered, err := s.reporter.RenderHTML(summary)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(rendered)
		return
	}

	rendered, err := s.reporter.RenderMarkdown(summary)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(rendered)
}

// toDomain converts the request evidence into domain types, enforcing
// the sample pair and series invariants at the boundary.
func (e evidenceRequest) toDomain() (evidence.Evidence, error) {
	ev := evidence.Evidence{
		Samples: make(map[core.MetricKey]evidence.SamplePair),
		Series:  make(map[core.MetricKey]evidence.TimeSeries),
		Refs:    e.Refs,
	}

	for name, pair := range e.Samples {
		metric, err := core.ParseMetricKey(name)
		if err != nil {
			return evidence.Evidence{}, err
		}
		domainPair, err := evidence.NewSamplePair(metric, pair.Baseline, pair.Test)
		if err != nil {
			return evidence.Evidence{}, err
		}
		ev.Samples[metric] = domainPair
	}

	for name, points := range e.Series {
		metric, err := core.ParseMetricKey(name)
		if err != nil {
			return evidence.Evidence{}, err
		}
		series := evidence.TimeSeries{Metric: metric, Points: points}
		if err := series.Validate(); err != nil {
			return evidence.Evidence{}, err
		}
		ev.Series[metric] = series
	}

	return ev, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
