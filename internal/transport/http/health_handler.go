package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/config"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/infrastructure"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	runs      RunTrigger
	clients   ClientCounter
	logger    *slog.Logger
	startedAt time.Time
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	Uptime           string `json:"uptime"`
	RunInProgress    bool   `json:"run_in_progress"`
	WebSocketClients int    `json:"websocket_clients"`

	Runtime infrastructure.ProcessStats `json:"runtime"`
}

// NewHealthHandler creates a new health handler; clients may be nil
func NewHealthHandler(runs RunTrigger, clients ClientCounter, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		runs:      runs,
		clients:   clients,
		logger:    logger.With(slog.String("handler", "health")),
		startedAt: time.Now(),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: config.AppVersion,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
		Runtime: infrastructure.ReadProcessStats(h.startedAt),
	}
	if h.runs != nil {
		resp.RunInProgress = h.runs.Running()
	}
	if h.clients != nil {
		resp.WebSocketClients = h.clients.ClientCount()
	}
	render.JSON(w, r, resp)
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"name":    config.AppName,
		"version": config.AppVersion,
	})
}
