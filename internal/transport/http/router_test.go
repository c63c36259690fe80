package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/middleware"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/operations"
)

func newRouterUnderTest(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	if cfg.Runs == nil {
		cfg.Runs = &fakeTrigger{id: "run-9"}
	}
	if cfg.Jobs == nil {
		cfg.Jobs = seedJobs(t)
	}
	if cfg.Registry == nil {
		cfg.Registry = operations.NewRegistry()
	}
	return NewRouter(cfg, discardLogger())
}

func TestNewRouter_Routes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	h := newRouterUnderTest(t, RouterConfig{Metrics: metrics})

	rec := do(t, h, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = do(t, h, http.MethodGet, "/api/runs")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/runs")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestNewRouter_NotFoundIsProblem(t *testing.T) {
	h := newRouterUnderTest(t, RouterConfig{})

	rec := do(t, h, http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/errors/not-found"`)

	rec = do(t, h, http.MethodDelete, "/api/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewRouter_RateLimit(t *testing.T) {
	h := newRouterUnderTest(t, RouterConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/health").Code)

	// metrics are outside the limited group
	h = newRouterUnderTest(t, RouterConfig{
		RateLimitRPS:   0.001,
		RateLimitBurst: 1,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	})
	do(t, h, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusTeapot, do(t, h, http.MethodGet, "/metrics").Code)
	assert.Equal(t, http.StatusTeapot, do(t, h, http.MethodGet, "/metrics").Code)
}
