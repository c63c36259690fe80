package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/analysis"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/config"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/exporter"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/extract"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/infrastructure"
	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/operations"
	handlers "github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/transport/http"
	ws "github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/websocket"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	Suite         *analysis.Suite
	Manager       *operations.Manager
	Scheduler     *operations.Scheduler
	WebSocketHub  *ws.Hub
	Router        *chi.Mux
	Server        *http.Server

	startedAt      time.Time
	processMetrics metric.Registration
	schedulerDone  chan struct{}
	stopOnce       sync.Once
}

// Options tweaks how NewApplication builds the container
type Options struct {
	// ConfigFile is an explicit YAML file; empty uses the default lookup
	ConfigFile string
	// Handoff overrides Pipeline.Handoff when set
	Handoff string
}

// NewApplication loads configuration, initializes logging and builds the
// application with dependency injection
func NewApplication(opts Options) (*Application, error) {
	cfg, err := config.LoadFrom(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.Handoff != "" {
		cfg.Pipeline.Handoff = opts.Handoff
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid hand-off override: %w", err)
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths := cfg.GetPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		startedAt:     time.Now(),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the loader, the analyzers and the host scheduler
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreatePipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.Metrics = metrics

	processMetrics, err := infrastructure.RegisterProcessMetrics(a.OTelProviders.Meter, a.startedAt)
	if err != nil {
		return fmt.Errorf("failed to register process metrics: %w", err)
	}
	a.processMetrics = processMetrics

	tracer, err := operations.NewOperationTracer(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to initialize operation tracer: %w", err)
	}

	hubMetrics, err := ws.NewHubMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(a.Logger, hubMetrics)

	loader := extract.NewLoader(a.Paths.InputDir, a.Logger)
	a.Suite = analysis.NewSuite(exporter.NewArtifactWriter(a.Paths.ResultsDir, a.Logger), a.Logger)

	registry, err := operations.NewPipelineRegistry(loader, a.Suite, a.Logger, &operations.StageOptions{
		Handoff:     operations.HandoffMode(a.Config.Pipeline.Handoff),
		HandoffFile: a.Paths.HandoffFile,
		Metrics:     metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	a.Manager = operations.NewManager(a.WebSocketHub, registry, operations.ConfigFromPipeline(a.Config.Pipeline))
	a.Manager.SetLogger(a.Logger)
	a.Manager.SetTracer(tracer)

	scheduler, err := operations.NewScheduler(a.Manager, a.Config.Pipeline.ScheduleInterval, a.Config.Pipeline.RunOnStart, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	a.Scheduler = scheduler
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	a.Router = handlers.NewRouter(handlers.RouterConfig{
		Runs:           a.Scheduler,
		Jobs:           a.Manager.JobStore(),
		Registry:       a.Manager.GetRegistry(),
		Clients:        a.WebSocketHub,
		StartedAt:      a.startedAt,
		WebSocket:      ws.NewHandler(a.WebSocketHub, a.Logger),
		Metrics:        a.OTelProviders.PrometheusHTTP,
		Tracer:         a.OTelProviders.Tracer,
		HTTPMetrics:    a.Metrics,
		RateLimitRPS:   a.Config.Server.RateLimitRPS,
		RateLimitBurst: a.Config.Server.RateLimitBurst,
	}, a.Logger)
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// RunPipeline executes one full run synchronously
func (a *Application) RunPipeline(ctx context.Context) (*operations.OperationResponse, error) {
	return a.Scheduler.RunOnce(ctx, operations.TriggerCLI)
}

// RunStep executes a single registered step. Dependencies outside the run
// are assumed satisfied, so analysis steps read the hand-off file.
func (a *Application) RunStep(ctx context.Context, stepID string) (*operations.OperationResponse, error) {
	registry := a.Manager.GetRegistry()
	if !registry.Has(stepID) {
		return nil, fmt.Errorf("unknown step %q, expected one of: %s", stepID, strings.Join(registry.ListIDs(), ", "))
	}
	return a.Manager.Execute(ctx, operations.OperationRequest{Step: stepID, Trigger: operations.TriggerCLI})
}

// Start launches the hub, the scheduler and, when enabled, the HTTP server.
// A server failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Duration("schedule_interval", a.Scheduler.Interval()),
		slog.Bool("server_enabled", a.Config.Server.Enabled))

	a.WebSocketHub.Start()

	a.schedulerDone = make(chan struct{})
	go func() {
		defer close(a.schedulerDone)
		if err := a.Scheduler.Start(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Scheduler error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if !a.Config.Server.Enabled {
		return nil
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop shuts the server down, waits for the scheduler to finish its active
// run and releases telemetry. The scheduler stops when the ctx passed to
// Start is cancelled.
func (a *Application) Stop(ctx context.Context) error {
	var stopErr error
	a.stopOnce.Do(func() {
		stopErr = a.stop(ctx)
	})
	return stopErr
}

func (a *Application) stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Config.Server.Enabled {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.schedulerDone != nil {
		select {
		case <-a.schedulerDone:
		case <-shutdownCtx.Done():
			errs = append(errs, fmt.Errorf("scheduler did not stop: %w", shutdownCtx.Err()))
		}
	}

	a.WebSocketHub.Stop()
	a.Manager.Close()
	if err := a.processMetrics.Unregister(); err != nil {
		a.Logger.WarnContext(ctx, "Failed to unregister process metrics", slog.String("error", err.Error()))
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run starts the scheduler daemon and blocks until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}

	<-runCtx.Done()
	a.Logger.Info("Received shutdown signal")
	cancel()

	// The parent ctx is done; shut down on a fresh one
	return a.Stop(context.Background())
}
