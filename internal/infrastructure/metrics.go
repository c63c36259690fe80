package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded by the host scheduler and
// the HTTP surface. All methods are safe on a nil receiver.
type PipelineMetrics struct {
	RunsTotal      metric.Int64Counter
	RunDuration    metric.Float64Histogram
	ActiveRuns     metric.Int64UpDownCounter
	StepsTotal     metric.Int64Counter
	StepDuration   metric.Float64Histogram
	StepRetries    metric.Int64Counter
	RowsExtracted  metric.Int64Counter
	ArtifactsTotal metric.Int64Counter
	HTTPRequests   metric.Int64Counter
	HTTPDuration   metric.Float64Histogram
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter("pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs by final status")); err != nil {
		return nil, err
	}
	if m.RunDuration, err = meter.Float64Histogram("pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.ActiveRuns, err = meter.Int64UpDownCounter("pipeline_active_runs",
		metric.WithDescription("Number of pipeline runs in progress")); err != nil {
		return nil, err
	}
	if m.StepsTotal, err = meter.Int64Counter("pipeline_steps_total",
		metric.WithDescription("Total number of step executions by step and status")); err != nil {
		return nil, err
	}
	if m.StepDuration, err = meter.Float64Histogram("pipeline_step_duration_seconds",
		metric.WithDescription("Step duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StepRetries, err = meter.Int64Counter("pipeline_step_retries_total",
		metric.WithDescription("Total number of step retry attempts")); err != nil {
		return nil, err
	}
	if m.RowsExtracted, err = meter.Int64Counter("pipeline_rows_extracted_total",
		metric.WithDescription("Survey rows loaded from the input directory")); err != nil {
		return nil, err
	}
	if m.ArtifactsTotal, err = meter.Int64Counter("pipeline_artifacts_written_total",
		metric.WithDescription("Analysis artifacts written by analyzer")); err != nil {
		return nil, err
	}
	if m.HTTPRequests, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRun records a finished pipeline run
func (m *PipelineMetrics) RecordRun(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RunStarted adjusts the active run gauge; pass -1 when the run ends.
func (m *PipelineMetrics) RunStarted(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.ActiveRuns.Add(ctx, delta)
}

// RecordStep records one step outcome
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("step.id", stepID),
		attribute.String("status", status),
	)
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRetry records a retry attempt for a step
func (m *PipelineMetrics) RecordRetry(ctx context.Context, stepID string) {
	if m == nil {
		return
	}
	m.StepRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("step.id", stepID)))
}

// RecordRows records the number of rows produced by an extraction
func (m *PipelineMetrics) RecordRows(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.RowsExtracted.Add(ctx, int64(rows))
}

// RecordArtifacts records artifacts written by an analyzer
func (m *PipelineMetrics) RecordArtifacts(ctx context.Context, analyzer string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.ArtifactsTotal.Add(ctx, int64(count), metric.WithAttributes(attribute.String("analyzer", analyzer)))
}

// RecordHTTPRequest records one served HTTP request
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequests.Add(ctx, 1, attrs)
	m.HTTPDuration.Record(ctx, duration.Seconds(), attrs)
}
