package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/infrastructure"
)

// Manager orchestrates operation execution
type Manager struct {
	registry    *Registry
	config      *Config
	hub         WebSocketHub
	broadcaster *StatusBroadcaster
	tracer      *OperationTracer
	store       JobStore
	logger      *slog.Logger

	// Active operations
	mu         sync.RWMutex
	operations map[string]*activeOperation
}

type activeOperation struct {
	state  *OperationState
	cancel context.CancelFunc
}

// NewManager creates a new operation manager with dependency injection
func NewManager(hub WebSocketHub, registry *Registry, config *Config) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	tracer, _ := NewOperationTracer(nil)

	return &Manager{
		registry:    registry,
		config:      config,
		hub:         hub,
		broadcaster: NewStatusBroadcaster(hub, slog.Default()),
		tracer:      tracer,
		store:       NewMemoryJobStore(),
		logger:      slog.Default(),
		operations:  make(map[string]*activeOperation),
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// SetConfig updates the operation configuration
func (m *Manager) SetConfig(config *Config) {
	if config != nil {
		m.config = config
	}
}

// SetLogger replaces the manager logger
func (m *Manager) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger.With(slog.String("component", "operations"))
	}
}

// SetTracer replaces the tracer used for spans and run metrics
func (m *Manager) SetTracer(tracer *OperationTracer) {
	if tracer != nil {
		m.tracer = tracer
	}
}

// SetJobStore replaces the run history store
func (m *Manager) SetJobStore(store JobStore) {
	if store != nil {
		m.store = store
	}
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetBroadcaster returns the status broadcaster for centralized status updates
func (m *Manager) GetBroadcaster() *StatusBroadcaster {
	return m.broadcaster
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// JobStore returns the run history store
func (m *Manager) JobStore() JobStore {
	return m.store
}

// Close stops the status broadcaster
func (m *Manager) Close() {
	m.broadcaster.Stop()
}

// Execute runs a operation with the given request. The full pipeline runs
// when req.Step is empty; otherwise only the named step runs and its
// dependencies are assumed satisfied.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Trigger == "" {
		req.Trigger = TriggerManual
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx, span := m.tracer.TraceOperationExecution(ctx, req)
	defer span.End()
	ctx = infrastructure.WithRunID(ctx, req.ID)

	state := NewOperationState(req.ID)
	state.Trigger = req.Trigger
	m.logOperationStart(ctx, req)

	levels, err := m.plan(req)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		m.createJob(ctx, req, state, nil)
		m.tracer.RecordOperationCompletion(ctx, span, req.ID, state.Duration(), state.GetStatus())
		return m.createResponse(state), err
	}

	var steps []Step
	inRun := make(map[string]bool)
	for _, level := range levels {
		for _, step := range level {
			steps = append(steps, step)
			inRun[step.ID()] = true
		}
	}

	ids := make([]string, len(steps))
	names := make([]string, len(steps))
	for i, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
		ids[i] = step.ID()
		names[i] = step.Name()
	}

	m.storeOperation(state, cancel)
	defer m.removeOperation(req.ID)

	m.broadcaster.CreateOperation(req.ID, ids, names)
	state.Start()
	m.broadcaster.StartOperation(req.ID)
	m.createJob(ctx, req, state, steps)

	for _, level := range levels {
		if m.config.ExecutionMode == ExecutionModeParallel && len(level) > 1 {
			m.executeParallel(ctx, state, level, inRun)
		} else {
			m.executeSequential(ctx, state, level, inRun)
		}
	}

	err = m.finish(ctx, state, steps)
	m.updateJob(ctx, state, steps)
	m.tracer.RecordOperationCompletion(ctx, span, req.ID, state.Duration(), state.GetStatus())
	m.logOperationComplete(ctx, req.ID, state.Duration(), string(state.GetStatus()))
	return m.createResponse(state), err
}

// plan resolves the steps of a request into dependency levels
func (m *Manager) plan(req OperationRequest) ([][]Step, error) {
	if req.Step != "" {
		step, err := m.registry.Get(req.Step)
		if err != nil {
			return nil, &OperationError{Type: ErrorTypeNotFound, Step: req.Step, Message: err.Error()}
		}
		return [][]Step{{step}}, nil
	}
	levels, err := m.registry.Levels()
	if err != nil {
		return nil, NewFatalError("failed to get dependency order", err)
	}
	if len(levels) == 0 {
		return nil, NewFatalError("no steps registered", nil)
	}
	return levels, nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step, inRun map[string]bool) {
	for _, step := range steps {
		m.executeStage(ctx, state, step, inRun)
	}
}

// executeParallel executes independent steps concurrently, bounded by
// MaxConcurrency. A failing step never cancels its siblings.
func (m *Manager) executeParallel(ctx context.Context, state *OperationState, steps []Step, inRun map[string]bool) {
	var g errgroup.Group
	if m.config.MaxConcurrency > 0 {
		g.SetLimit(m.config.MaxConcurrency)
	}
	for _, step := range steps {
		g.Go(func() error {
			m.executeStage(ctx, state, step, inRun)
			return nil
		})
	}
	_ = g.Wait()
}

// executeStage executes a single Step with retry logic and leaves it in a
// terminal status
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step, inRun map[string]bool) {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return
	}

	if ctx.Err() != nil {
		m.skipStage(ctx, state, step, "operation cancelled")
		return
	}

	if reason := m.checkDependencies(state, step, inRun); reason != "" {
		m.skipStage(ctx, state, step, reason)
		return
	}

	if err := step.Validate(state); err != nil {
		m.failStage(ctx, state, step, NewValidationError(step.ID(), err.Error()))
		return
	}

	stepCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()
	defer func() {
		m.tracer.RecordStageCompletion(stepCtx, span, step.ID(), stepState.Duration(), stepState.GetStatus(), stepState.GetAttempts())
	}()

	m.logStageStart(stepCtx, state.ID, step.ID())
	timeout := m.config.GetStageTimeout(step.ID())
	retryConfig := m.config.RetryConfig
	maxAttempts := max(retryConfig.MaxAttempts, 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		stepState.Start()
		m.broadcaster.UpdateStepProgress(state.ID, step.ID(), 0, "Step started")

		attemptCtx, cancel := context.WithTimeout(stepCtx, timeout)
		startTime := time.Now()
		err := step.Execute(attemptCtx, state)
		timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && stepCtx.Err() == nil
		cancel()
		duration := time.Since(startTime)

		if err == nil {
			m.logStageComplete(stepCtx, state.ID, step.ID(), duration)
			message := stepState.GetMessage()
			if message == "" {
				message = "Step completed successfully"
			}
			stepState.Complete(message)
			m.broadcaster.CompleteStep(state.ID, step.ID(), message)
			return
		}

		if IsSkip(err) {
			var opErr *OperationError
			errors.As(err, &opErr)
			m.skipStage(stepCtx, state, step, opErr.Message)
			return
		}

		if timedOut {
			err = &OperationError{
				Type:      ErrorTypeTimeout,
				Step:      step.ID(),
				Message:   fmt.Sprintf("step exceeded timeout of %s", timeout),
				Cause:     err,
				Retryable: true,
			}
		}
		m.tracer.RecordStageError(stepCtx, step.ID(), err)
		m.logStageError(stepCtx, state.ID, step.ID(), attempt, err)

		if stepCtx.Err() != nil {
			m.failStage(stepCtx, state, step, NewCancellationError(step.ID()))
			return
		}
		if !IsRetryable(err) || attempt >= maxAttempts {
			m.failStage(stepCtx, state, step, WrapError(err, step.ID(), fmt.Sprintf("failed after %d attempt(s)", attempt)))
			return
		}

		delay := m.calculateRetryDelay(attempt, retryConfig)
		m.logger.WarnContext(stepCtx, "stage_retry",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay))
		m.tracer.RecordStageRetry(stepCtx, step.ID(), attempt, delay)
		m.broadcaster.UpdateStepProgress(state.ID, step.ID(), 0, fmt.Sprintf("Retrying in %s: %v", delay, err))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-stepCtx.Done():
			timer.Stop()
			m.failStage(stepCtx, state, step, NewCancellationError(step.ID()))
			return
		}
	}
}

func (m *Manager) skipStage(ctx context.Context, state *OperationState, step Step, reason string) {
	state.GetStage(step.ID()).Skip(reason)
	m.broadcaster.SkipStep(state.ID, step.ID(), reason)
	m.logger.WarnContext(ctx, "stage_skipped",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.String("reason", reason))
}

func (m *Manager) failStage(ctx context.Context, state *OperationState, step Step, err error) {
	state.GetStage(step.ID()).Fail(err)
	m.broadcaster.FailStep(state.ID, step.ID(), err)
	m.logger.ErrorContext(ctx, "stage_failed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.String("error", err.Error()))
}

// checkDependencies returns a skip reason when a dependency that is part of
// this run did not complete
func (m *Manager) checkDependencies(state *OperationState, step Step, inRun map[string]bool) string {
	for _, dep := range step.GetDependencies() {
		if !inRun[dep] {
			continue
		}
		depState := state.GetStage(dep)
		if depState == nil {
			return fmt.Sprintf("dependency %s not found", dep)
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return fmt.Sprintf("dependency %s %s", dep, status)
		}
	}
	return ""
}

// calculateRetryDelay returns InitialDelay * Multiplier^(attempt-1), capped at MaxDelay
func (m *Manager) calculateRetryDelay(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay)
	for i := 1; i < attempt && config.Multiplier > 0; i++ {
		delay *= config.Multiplier
	}
	d := time.Duration(delay)
	if config.MaxDelay > 0 && d > config.MaxDelay {
		d = config.MaxDelay
	}
	return d
}

// finish sets the terminal run status: cancelled when the context ended,
// failed when any step failed, completed otherwise. Skipped steps do not
// fail a run.
func (m *Manager) finish(ctx context.Context, state *OperationState, steps []Step) error {
	if ctx.Err() != nil {
		state.Cancel()
		m.broadcaster.CancelOperation(state.ID)
		return NewCancellationError("")
	}

	var errs []error
	for _, step := range steps {
		st := state.GetStage(step.ID())
		if st.GetStatus() == StepStatusFailed {
			errs = append(errs, st.Error)
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		state.Fail(err)
		m.broadcaster.FailOperation(state.ID, err)
		return err
	}

	state.Complete()
	m.broadcaster.CompleteOperation(state.ID, "Operation completed successfully")
	return nil
}

// createResponse creates a operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	snapshot := state.Clone()
	resp := &OperationResponse{
		ID:       snapshot.ID,
		Status:   snapshot.Status,
		Duration: state.Duration(),
		Steps:    snapshot.Steps,
	}
	if snapshot.Error != nil {
		resp.Error = snapshot.Error.Error()
	}
	return resp
}

// GetOperation retrieves the state of a running operation
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, exists := m.operations[id]
	if !exists {
		return nil, fmt.Errorf("operation %s: %w", id, ErrOperationNotFound)
	}
	return op.state.Clone(), nil
}

// ListOperations returns all active operations
func (m *Manager) ListOperations() []*OperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	operations := make([]*OperationState, 0, len(m.operations))
	for _, op := range m.operations {
		operations = append(operations, op.state.Clone())
	}
	return operations
}

// CancelOperation cancels a running operation; pending steps are skipped
func (m *Manager) CancelOperation(id string) error {
	m.mu.RLock()
	op, exists := m.operations[id]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("operation %s: %w", id, ErrOperationNotFound)
	}
	op.cancel()
	return nil
}

func (m *Manager) storeOperation(state *OperationState, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = &activeOperation{state: state, cancel: cancel}
}

func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
}

// createJob records the run in the history store
func (m *Manager) createJob(ctx context.Context, req OperationRequest, state *OperationState, steps []Step) {
	job := buildJob(state, steps)
	job.Step = req.Step
	if err := m.store.CreateJob(job); err != nil {
		m.logger.WarnContext(ctx, "job_record_failed",
			slog.String("operation_id", state.ID),
			slog.String("error", err.Error()))
	}
}

func (m *Manager) updateJob(ctx context.Context, state *OperationState, steps []Step) {
	existing, err := m.store.GetJob(state.ID)
	if err != nil {
		m.logger.WarnContext(ctx, "job_record_failed",
			slog.String("operation_id", state.ID),
			slog.String("error", err.Error()))
		return
	}
	job := buildJob(state, steps)
	job.Step = existing.Step
	job.CreatedAt = existing.CreatedAt
	if err := m.store.UpdateJob(job); err != nil {
		m.logger.WarnContext(ctx, "job_record_failed",
			slog.String("operation_id", state.ID),
			slog.String("error", err.Error()))
	}
}

func buildJob(state *OperationState, steps []Step) *Job {
	snapshot := state.Clone()
	job := &Job{
		ID:          snapshot.ID,
		Trigger:     snapshot.Trigger,
		Status:      jobStatusFor(snapshot.Status),
		CreatedAt:   snapshot.StartTime,
		CompletedAt: snapshot.EndTime,
	}
	if snapshot.Status != OperationStatusPending {
		started := snapshot.StartTime
		job.StartedAt = &started
	}
	if snapshot.Error != nil {
		job.Error = snapshot.Error.Error()
	}
	for _, step := range steps {
		st, ok := snapshot.Steps[step.ID()]
		if !ok {
			continue
		}
		run := JobStepRun{
			ID:       st.ID,
			Name:     st.Name,
			Status:   st.Status,
			Attempts: st.Attempts,
			Message:  st.Message,
			Error:    st.ErrorText,
			Metadata: st.Metadata,
		}
		if d := st.Duration(); d > 0 {
			run.Duration = d.String()
		}
		job.Steps = append(job.Steps, run)
	}
	return job
}
