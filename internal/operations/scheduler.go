package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Executor runs one operation; *Manager implements it
type Executor interface {
	Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error)
}

// Scheduler triggers full pipeline runs on a fixed interval. At most one run
// is active at a time; ticks that fire during a run are dropped, so missed
// intervals are never caught up.
type Scheduler struct {
	executor   Executor
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup

	mu      sync.Mutex
	baseCtx context.Context
}

// NewScheduler creates a scheduler; interval must be positive
func NewScheduler(executor Executor, interval time.Duration, runOnStart bool, logger *slog.Logger) (*Scheduler, error) {
	if executor == nil {
		return nil, fmt.Errorf("scheduler requires an executor")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("schedule interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		executor:   executor,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger.With(slog.String("component", "scheduler")),
	}, nil
}

// Interval returns the trigger interval
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Running reports whether a run is in progress
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Start triggers runs until ctx is cancelled, then waits for the active run
// to stop. Runs started by Trigger inherit ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Scheduler started",
		slog.Duration("interval", s.interval),
		slog.Bool("run_on_start", s.runOnStart))

	if s.runOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.Trigger(TriggerSchedule); err != nil {
		s.logger.WarnContext(ctx, "Scheduled run dropped",
			slog.String("reason", err.Error()))
	}
}

// Trigger starts an asynchronous full run and returns its ID. It fails with
// ErrRunInProgress while another run is active.
func (s *Scheduler) Trigger(trigger string) (string, error) {
	if !s.running.CompareAndSwap(false, true) {
		return "", ErrRunInProgress
	}

	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	req := OperationRequest{ID: uuid.NewString(), Trigger: trigger}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.execute(ctx, req)
	}()
	return req.ID, nil
}

// RunOnce executes a full run synchronously
func (s *Scheduler) RunOnce(ctx context.Context, trigger string) (*OperationResponse, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)
	return s.execute(ctx, OperationRequest{ID: uuid.NewString(), Trigger: trigger})
}

func (s *Scheduler) execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	resp, err := s.executor.Execute(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "Pipeline run failed",
			slog.String("operation_id", req.ID),
			slog.String("trigger", req.Trigger),
			slog.String("error", err.Error()))
		return resp, err
	}
	s.logger.InfoContext(ctx, "Pipeline run finished",
		slog.String("operation_id", req.ID),
		slog.String("trigger", req.Trigger),
		slog.Duration("duration", resp.Duration))
	return resp, nil
}
