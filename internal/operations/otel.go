package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/infrastructure"
)

const (
	TracerName = "colddrinks.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer bound to the global tracer provider.
// A nil providers value yields a tracer without business metrics.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	pt := &OperationTracer{tracer: otel.Tracer(TracerName)}
	if providers == nil || providers.Meter == nil {
		return pt, nil
	}
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	pt.metrics = metrics
	return pt, nil
}

// Metrics returns the business metrics, nil when disabled
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, req OperationRequest) (context.Context, trace.Span) {
	ctx, span := pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", req.ID),
			attribute.String("operation.trigger", req.Trigger),
			attribute.String("operation.step", req.Step),
		),
	)
	pt.metrics.RunStarted(ctx, 1)
	return ctx, span
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordOperationCompletion ends bookkeeping for a run; the caller ends the span
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, operationID string, duration time.Duration, status OperationStatusValue) {
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)
	pt.metrics.RunStarted(ctx, -1)
	pt.metrics.RecordRun(ctx, string(status), duration)

	infrastructure.AddSpanEvent(ctx, "operation.completed", map[string]interface{}{
		"operation_id": operationID,
		"status":       string(status),
		"duration":     duration.Seconds(),
	})

	if status == OperationStatusCompleted {
		span.SetStatus(codes.Ok, "operation completed")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("operation finished with status %s", status))
	}
}

// RecordStageCompletion records one step outcome
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, status StepStatus, attempts int) {
	span.SetAttributes(
		attribute.String("step.status", string(status)),
		attribute.Int("step.attempts", attempts),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	pt.metrics.RecordStep(ctx, stepID, string(status), duration)

	switch status {
	case StepStatusFailed:
		span.SetStatus(codes.Error, "step failed")
	default:
		span.SetStatus(codes.Ok, string(status))
	}
}

// RecordStageRetry records a retry of a step
func (pt *OperationTracer) RecordStageRetry(ctx context.Context, stepID string, attempt int, delay time.Duration) {
	pt.metrics.RecordRetry(ctx, stepID)
	infrastructure.AddSpanEvent(ctx, "step.retry", map[string]interface{}{
		"step_id": stepID,
		"attempt": attempt,
		"delay":   delay.String(),
	})
}

// RecordStageError records step errors on the active span
func (pt *OperationTracer) RecordStageError(ctx context.Context, stepID string, err error) {
	infrastructure.RecordError(ctx, err,
		trace.WithAttributes(
			attribute.String("step.id", stepID),
			attribute.String("error.type", string(GetErrorType(err))),
		),
	)
}
