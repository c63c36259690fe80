package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/middleware"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/operations"
)

// RunsHandler exposes run history and manual triggering
type RunsHandler struct {
	runs     RunTrigger
	jobs     operations.JobStore
	registry *operations.Registry
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRunsHandler creates a runs handler
func NewRunsHandler(runs RunTrigger, jobs operations.JobStore, registry *operations.Registry, logger *slog.Logger) *RunsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunsHandler{
		runs:     runs,
		jobs:     jobs,
		registry: registry,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "runs")),
	}
}

// Routes returns the router for /api/runs
func (h *RunsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Start)
	r.Get("/{id}", h.Get)
	return r
}

// ListQuery holds the validated query of GET /api/runs
type ListQuery struct {
	Status string `validate:"omitempty,oneof=pending running completed failed cancelled"`
	Limit  int    `validate:"min=0,max=1000"`
}

// RunAccepted is the body of a 202 response to POST /api/runs
type RunAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Href   string `json:"href"`
}

// StepInfo describes one registered pipeline step
type StepInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Level        int      `json:"level"`
	Dependencies []string `json:"dependencies"`
}

// List handles GET /api/runs
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := ListQuery{Status: r.URL.Query().Get("status")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteProblem(w, r, http.StatusBadRequest, "limit must be an integer")
			return
		}
		query.Limit = limit
	}
	if err := h.validate.Struct(query); err != nil {
		middleware.WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := h.jobs.ListJobs(operations.JobFilter{
		Status: operations.JobStatus(query.Status),
		Limit:  query.Limit,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "List runs failed", slog.String("error", err.Error()))
		middleware.WriteProblem(w, r, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if jobs == nil {
		jobs = []*operations.Job{}
	}
	render.JSON(w, r, jobs)
}

// Get handles GET /api/runs/{id}
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.jobs.GetJob(id)
	if err != nil {
		if errors.Is(err, operations.ErrOperationNotFound) {
			middleware.WriteProblem(w, r, http.StatusNotFound, "run "+id+" not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Get run failed",
			slog.String("run_id", id),
			slog.String("error", err.Error()))
		middleware.WriteProblem(w, r, http.StatusInternalServerError, "failed to load run")
		return
	}
	render.JSON(w, r, job)
}

// Start handles POST /api/runs
func (h *RunsHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := h.runs.Trigger(operations.TriggerAPI)
	if err != nil {
		if errors.Is(err, operations.ErrRunInProgress) {
			middleware.WriteProblem(w, r, http.StatusConflict, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Trigger run failed", slog.String("error", err.Error()))
		middleware.WriteProblem(w, r, http.StatusInternalServerError, "failed to start run")
		return
	}

	h.logger.InfoContext(r.Context(), "Run triggered via API", slog.String("run_id", id))
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, RunAccepted{ID: id, Status: "accepted", Href: "/api/runs/" + id})
}

// Steps handles GET /api/steps
func (h *RunsHandler) Steps(w http.ResponseWriter, r *http.Request) {
	levels, err := h.registry.Levels()
	if err != nil {
		middleware.WriteProblem(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	steps := make([]StepInfo, 0, h.registry.Count())
	for level, group := range levels {
		for _, step := range group {
			deps := step.GetDependencies()
			if deps == nil {
				deps = []string{}
			}
			steps = append(steps, StepInfo{
				ID:           step.ID(),
				Name:         step.Name(),
				Level:        level,
				Dependencies: deps,
			})
		}
	}
	render.JSON(w, r, steps)
}
