package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/infrastructure"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/middleware"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/operations"
)

// RouterConfig carries everything NewRouter mounts. Optional fields may be nil.
type RouterConfig struct {
	Runs      RunTrigger
	Jobs      operations.JobStore
	Registry  *operations.Registry
	Clients   ClientCounter
	WebSocket http.Handler
	Metrics   http.Handler
	// StartedAt anchors the uptime reported by /api/health; zero means now
	StartedAt time.Time

	Tracer      trace.Tracer
	HTTPMetrics *infrastructure.PipelineMetrics

	// RateLimitRPS of 0 disables the API rate limiter
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the status server router.
//
// Middleware order: RequestID → RealIP → /ws and /metrics, then for the API
// group OTel → Logger → Recoverer → SecurityHeaders → RateLimiter.
func NewRouter(cfg RouterConfig, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	// These don't wrap the ResponseWriter, so they are safe for the WebSocket upgrade
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteProblem(w, r, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteProblem(w, r, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
	})

	if cfg.WebSocket != nil {
		r.Handle("/ws", cfg.WebSocket)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	health := NewHealthHandler(cfg.Runs, cfg.Clients, logger)
	if !cfg.StartedAt.IsZero() {
		health.startedAt = cfg.StartedAt
	}
	runs := NewRunsHandler(cfg.Runs, cfg.Jobs, cfg.Registry, logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOTelMiddleware(cfg.Tracer, cfg.HTTPMetrics).Handler)
		r.Use(middleware.StructuredLogger(logger))
		r.Use(middleware.Recoverer(logger))
		r.Use(middleware.SecurityHeaders)
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger).Handler)
		}

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Get("/health", health.HealthCheck)
			r.Get("/version", health.Version)
			r.Get("/steps", runs.Steps)
			r.Mount("/runs", runs.Routes())
		})
	})

	return r
}
